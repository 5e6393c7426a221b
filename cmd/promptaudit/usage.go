package main

const subcommandUsageTemplate = `Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
{{if .HasExample}}Examples:
{{.Example}}
{{end}}`

const rootUsageTemplate = `Usage:
  {{.CommandPath}} [command] [flags]

{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}  {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}
{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
Configuration is read from the environment (VERTEX_PROJECT_ID, VERTEX_LOCATION,
VERTEX_MODEL_ID, BQ_DATASET_ID, BQ_TABLE_ID, AUDIT_LOG_*) and an optional .env file.
Credentials come from Application Default Credentials.

{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`
