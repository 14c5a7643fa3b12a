package main

// usageBody lists commands and flags; the templates below differ only in
// their Usage lines.
const usageBody = `
{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}  {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}
{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

const rootUsageTemplate = `Usage:
  codelex "<sentence>" [flags]
  echo "<sentence>" | codelex process - [flags]
{{if .HasAvailableSubCommands}}  {{.CommandPath}} [command]
{{end}}` + usageBody

const subcommandUsageTemplate = `Usage:
  {{.UseLine}}
` + usageBody

// groupUsageTemplate is for commands that only group subcommands (env, config).
const groupUsageTemplate = `Usage:
  {{.UseLine}}
  {{.CommandPath}} [command]
` + usageBody
