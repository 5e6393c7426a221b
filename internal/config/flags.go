package config

import "github.com/spf13/pflag"

type flagBinding struct {
	usage string
	field func(*Config) *string
}

var bindings = map[string]flagBinding{
	"project": {
		usage: "Google Cloud project (overrides VERTEX_PROJECT_ID)",
		field: func(c *Config) *string { return &c.Project },
	},
	"location": {
		usage: "Vertex AI region (overrides VERTEX_LOCATION)",
		field: func(c *Config) *string { return &c.Location },
	},
	"model": {
		usage: "Gemini model ID (overrides VERTEX_MODEL_ID)",
		field: func(c *Config) *string { return &c.Model },
	},
	"dataset": {
		usage: "BigQuery dataset (overrides BQ_DATASET_ID)",
		field: func(c *Config) *string { return &c.Dataset },
	},
	"table": {
		usage: "BigQuery table (overrides BQ_TABLE_ID)",
		field: func(c *Config) *string { return &c.Table },
	},
	"spool-dir": {
		usage: "Directory for rows that failed to insert (overrides AUDIT_SPOOL_DIR)",
		field: func(c *Config) *string { return &c.SpoolDir },
	},
	"audit-log": {
		usage: "Audit log file path (overrides AUDIT_LOG_FILE)",
		field: func(c *Config) *string { return &c.AuditLog.Path },
	},
}

// BindFlags registers the named override flags on fs. Unknown names panic,
// since they can only come from a programming error.
func BindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		b, ok := bindings[name]
		if !ok {
			panic("config: unknown override flag " + name)
		}
		fs.String(name, "", b.usage)
	}
}

// ApplyFlags copies every override flag that was set on fs into cfg.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) {
	for name, b := range bindings {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		*b.field(cfg) = f.Value.String()
	}
}
