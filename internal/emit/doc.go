// Package emit writes an enumeration result to disk.
//
// Output layout under the root directory:
//
//	architecture/config_<i>.architecture.yaml
//	workload/config_<j>.workload.yaml
//	event/event.yaml
//	metric/metric.yaml
//	runs/config_<k>/
//	runs.txt
//	manifest.csv
//
// Catalog documents are written first. The run list and the manifest are
// built in memory and each replaced atomically, manifest last, so a failed
// run never leaves a manifest pointing at files that were not written.
package emit
