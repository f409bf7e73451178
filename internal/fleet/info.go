// Package fleet resolves carrier fleet sizes from the federal registry and
// memoizes them for the life of the process.
package fleet

// Resolution tells whether a fleet lookup produced usable data.
type Resolution int

const (
	// ResolutionUnknown means no lookup was possible (no DOT number) or the
	// registry had no record for the carrier.
	ResolutionUnknown Resolution = iota
	// ResolutionKnown means the registry returned a record.
	ResolutionKnown
	// ResolutionFailed means the lookup errored (timeout, network, bad
	// response). Callers must treat this the same as unknown.
	ResolutionFailed
)

func (r Resolution) String() string {
	switch r {
	case ResolutionKnown:
		return "known"
	case ResolutionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Count is an integer field that may be missing from a registry record.
// Registry values arrive as strings and individual fields can be absent or
// garbage without invalidating the rest of the record.
type Count struct {
	Value int
	Known bool
}

// KnownCount returns a populated Count.
func KnownCount(v int) Count {
	return Count{Value: v, Known: true}
}

// Info is a carrier's registry record. TruckUnits drives the small-carrier
// filter; the remaining fields decorate driver and broker payloads.
type Info struct {
	DOTNumber     string
	LegalName     string
	PhysicalCity  string
	PhysicalState string
	EntityType    string
	MCNumber      Count
	TruckUnits    Count
	TotalDrivers  Count

	Resolution    Resolution
	FailureReason string
}

// Unknown returns an Info marking the carrier as unverifiable.
func Unknown(dotNumber string) *Info {
	return &Info{DOTNumber: dotNumber, Resolution: ResolutionUnknown}
}

// Failed returns an Info marking the lookup as errored.
func Failed(dotNumber, reason string) *Info {
	return &Info{DOTNumber: dotNumber, Resolution: ResolutionFailed, FailureReason: reason}
}
