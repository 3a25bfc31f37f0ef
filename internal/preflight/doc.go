// Package preflight provides readiness checks for the services and
// filesystem paths a pipeline run depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before fetching the listing. If any
//     check fails, the run aborts instead of failing ten papers deep.
//   - The CLI "precis status" command uses the individual check
//     functions to display workspace and endpoint health.
//
// The engine binary check only applies when the subprocess engine is
// selected -- the native engine parses documents in-process.
package preflight
