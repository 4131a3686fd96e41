// Package preflight provides readiness checks for the filesystem paths and
// external tools a run depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before extracting anything. If any check
//     fails, the run stops before touching the source or output trees.
//   - The CLI "wwisex deps" command uses CheckSystemDeps to display tool
//     availability.
package preflight
