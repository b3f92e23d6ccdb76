// Package dbconfig defines hybriddb's configuration structure: the
// root Config loaded by internal/infra/confloader from defaults, an
// optional YAML file and HYBRIDDB_-prefixed environment variables.
package dbconfig
