// Package commands provides the command-line interface for the datashift tool.
//
// It implements commands for:
//   - shifting files into the framed .shift format
//   - restoring shifted files to their original name and content
//
// The root command also accepts the original verb form
// "datashift [dir] --shift|--restore|--force-shift|--force-restore file...".
//
// Flags are bound through viper, so every flag can also be set with a
// DATASHIFT_<FLAG> environment variable.
package commands
