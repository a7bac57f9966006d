// Package enumerate turns a design.Session into unique architecture and
// workload catalogs plus the list of legal (architecture, workload) pairs.
//
// The pipeline is strictly sequential:
//
//	Split     one concrete vertex per sweep value, constraint edges rewired
//	          to concrete value pairs, implicit anti edges among siblings
//	Group     connected components over every edge
//	Collapse  per component, direct-linked values merged into fragments
//	Reduce    fragments combined by product, deduplicated, and paired
//
// Components never interact, so the work is proportional to the product of
// per-component fragment counts rather than the product of all domains.
// Optional limits abort with a LimitError before anything is emitted.
package enumerate
