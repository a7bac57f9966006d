package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainArchitecture = "archgen/architecture/v1"
	DomainWorkload     = "archgen/workload/v1"
	DomainFragment     = "archgen/fragment/v1"
	DomainDesign       = "archgen/design/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns the domain-separated hash of v's canonical encoding.
func ContentHash(domain string, v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ArchitectureHash identifies an architecture tree.
func ArchitectureHash(tree IRObject) (string, error) {
	return ContentHash(DomainArchitecture, tree)
}

// WorkloadHash identifies a workload tree.
func WorkloadHash(tree IRObject) (string, error) {
	return ContentHash(DomainWorkload, tree)
}

// FragmentHash identifies a fragment by both of its trees.
// Used as the dedup key while fragments are combined.
func FragmentHash(f Fragment) (string, error) {
	return ContentHash(DomainFragment, IRObject{
		"architecture": f.Architecture,
		"workload":     f.Workload,
	})
}

// MustFragmentHash is like FragmentHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFragmentHash(f Fragment) string {
	h, err := FragmentHash(f)
	if err != nil {
		panic(err)
	}
	return h
}
