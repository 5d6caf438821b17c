package dataset

import (
	"fmt"

	"gocer/domain/registry"
)

// SplitRange selects samples [Start, End) of every class, counted in file order
type SplitRange struct {
	Start int
	End   int
}

func (r SplitRange) overlaps(o SplitRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// ProtocolDef defines the train and test partitions of one protocol
type ProtocolDef struct {
	Train SplitRange
	Test  SplitRange
}

// Range returns the partition for split
func (d ProtocolDef) Range(split registry.Split) (SplitRange, bool) {
	switch split {
	case registry.SplitTrain:
		return d.Train, true
	case registry.SplitTest:
		return d.Test, true
	}
	return SplitRange{}, false
}

// Validate checks bounds and that train and test never share a sample
func (d ProtocolDef) Validate() error {
	for name, r := range map[string]SplitRange{"train": d.Train, "test": d.Test} {
		if r.Start < 0 || r.End <= r.Start {
			return fmt.Errorf("invalid %s range [%d, %d)", name, r.Start, r.End)
		}
	}
	if d.Train.overlaps(d.Test) {
		return fmt.Errorf("train range [%d, %d) overlaps test range [%d, %d)",
			d.Train.Start, d.Train.End, d.Test.Start, d.Test.End)
	}
	return nil
}

// DefaultProtocols returns the two Iris protocols: proto1 trains on the first 30
// samples of each class, proto2 on the last 30.
func DefaultProtocols() map[registry.Protocol]ProtocolDef {
	return map[registry.Protocol]ProtocolDef{
		"proto1": {Train: SplitRange{0, 30}, Test: SplitRange{30, 50}},
		"proto2": {Train: SplitRange{20, 50}, Test: SplitRange{0, 20}},
	}
}
