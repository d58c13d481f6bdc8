// Package awre induces a protocol field layout from two or more
// demodulated messages (spec §4.I, "Automatic Wireless Reverse
// Engineering"). Messages are first clustered into message types by
// length (§4.I.8); each type then runs preamble, sync, length, address,
// sequence-number and checksum detection independently, with whatever
// remains emitted as one data field (§4.I.1–I.7).
//
// Per spec §5, message types are independent once clustered: Find runs
// each type's stages on its own goroutine and joins them, the same
// map-reduce shape as the teacher's internal/sdr.Device fan-in of
// stdout/stderr/wait results into a single done channel.
package awre

import (
	"sort"
	"strconv"
	"sync"

	"github.com/sigproto/awre/internal/checksum"
	"github.com/sigproto/awre/internal/demod"
)

// Label is the field role vocabulary of spec §3.
type Label string

const (
	LabelPreamble        Label = "preamble"
	LabelSync            Label = "sync"
	LabelLength          Label = "length"
	LabelAddress         Label = "address"
	LabelSequenceNumber  Label = "sequence_number"
	LabelData            Label = "data"
	LabelChecksum        Label = "checksum"
	LabelUnknown         Label = "unknown"
)

// Field is one induced protocol field, expressed as a [Start, End) bit
// range within its message type's common prefix.
type Field struct {
	Name        string `json:"name"`
	MessageType string `json:"message_type"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Label       Label  `json:"-"`
}

// MessageType groups the messages that share one field layout.
type MessageType struct {
	ID       string
	Messages []demod.Message
	Fields   []Field
}

// Config holds the tunables the format finder needs that aren't already
// covered by internal/config.Config's pipeline-wide defaults.
type Config struct {
	ChecksumCatalogue []checksum.Algorithm
}

// Find runs the full §4.I pipeline over messages and returns one
// MessageType per cluster, each carrying its induced field list in
// ascending bit-start order. With fewer than two messages, no clustering
// or field detection runs (§4.I failure semantics).
func Find(messages []demod.Message, cfg Config) []MessageType {
	if len(messages) < 2 {
		return nil
	}

	clusters := clusterByLength(messages)
	types := make([]MessageType, len(clusters))

	var wg sync.WaitGroup
	for i, idxs := range clusters {
		members := make([]demod.Message, len(idxs))
		for j, idx := range idxs {
			members[j] = messages[idx]
		}

		id := "Default"
		if i > 0 {
			id = typeName(i + 1)
		}

		wg.Add(1)
		go func(i int, id string, members []demod.Message) {
			defer wg.Done()
			types[i] = MessageType{
				ID:       id,
				Messages: members,
				Fields:   findFieldsForType(id, members, cfg),
			}
		}(i, id, members)
	}
	wg.Wait()

	return types
}

func typeName(n int) string {
	return "Type " + strconv.Itoa(n)
}

// clusterByLength groups message indices by §4.I.8's heuristic: a message
// joins a cluster when its length matches the cluster's base length, or
// differs from it by a multiple of the cluster's delta. A cluster's delta
// is set only by the second message it receives, when that message's
// length differs from the base; a cluster whose first two members share
// one length never gets a delta. Clusters are
// returned in order of first appearance; the first is always "Default".
func clusterByLength(messages []demod.Message) [][]int {
	type cluster struct {
		baseLength int
		delta      int
		indices    []int
	}

	var clusters []*cluster
	for i, m := range messages {
		l := len(m.Bits)
		placed := false

		for _, c := range clusters {
			if l == c.baseLength {
				c.indices = append(c.indices, i)
				placed = true
				break
			}
			if c.delta != 0 {
				diff := l - c.baseLength
				if diff%c.delta == 0 {
					c.indices = append(c.indices, i)
					placed = true
					break
				}
				continue
			}
			if len(c.indices) == 1 {
				diff := l - c.baseLength
				if diff != 0 {
					c.delta = diff
					c.indices = append(c.indices, i)
					placed = true
					break
				}
			}
		}

		if !placed {
			clusters = append(clusters, &cluster{baseLength: l, indices: []int{i}})
		}
	}

	out := make([][]int, len(clusters))
	for i, c := range clusters {
		out[i] = c.indices
	}
	return out
}

// findFieldsForType runs stages I.1–I.7 over one message type's members
// and returns the ordered, non-overlapping field list.
func findFieldsForType(typeID string, members []demod.Message, cfg Config) []Field {
	if len(members) < 2 {
		return nil
	}

	l := commonPrefixLength(members)
	if l == 0 {
		return nil
	}

	var fields []Field
	cursor := 0

	if preamble, ok := findPreamble(members, l); ok {
		preamble.MessageType = typeID
		fields = append(fields, preamble)
		cursor = preamble.End
	}

	if sync, ok := findSync(members, l, cursor); ok {
		sync.MessageType = typeID
		fields = append(fields, sync)
		cursor = sync.End
	}

	assigned := newRangeSet(l)
	for _, f := range fields {
		assigned.mark(f.Start, f.End)
	}

	checksumField, hasChecksum := findChecksum(members, l, cfg.ChecksumCatalogue)
	if hasChecksum {
		assigned.mark(checksumField.Start, checksumField.End)
	}

	lengthField, hasLength := findLength(members, l, cursor, assigned)
	if hasLength {
		lengthField.MessageType = typeID
		fields = append(fields, lengthField)
		assigned.mark(lengthField.Start, lengthField.End)
	}

	addrFields := findAddresses(members, l, assigned)
	for i := range addrFields {
		addrFields[i].MessageType = typeID
		fields = append(fields, addrFields[i])
		assigned.mark(addrFields[i].Start, addrFields[i].End)
	}

	if seqField, ok := findSequence(members, l, assigned); ok {
		seqField.MessageType = typeID
		fields = append(fields, seqField)
		assigned.mark(seqField.Start, seqField.End)
	}

	dataEnd := l
	if hasChecksum {
		dataEnd = checksumField.Start
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Start < fields[j].Start })

	dataStart := 0
	if len(fields) > 0 {
		dataStart = fields[len(fields)-1].End
	}
	if dataStart < dataEnd {
		fields = append(fields, Field{
			Name:  "data",
			Start: dataStart,
			End:   dataEnd,
			Label: LabelData,
		})
	}

	if hasChecksum {
		checksumField.MessageType = typeID
		fields = append(fields, checksumField)
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Start < fields[j].Start })
	fields = fillGaps(fields, l)

	for i := range fields {
		fields[i].MessageType = typeID
	}

	return fields
}

// fillGaps inserts an unknown field for every stretch of [0, l) not
// covered by fields, so the returned list's ranges union to [0, l)
// without gaps (§3's Field coverage invariant). fields must already be
// sorted by Start and pairwise non-overlapping.
func fillGaps(fields []Field, l int) []Field {
	if l <= 0 {
		return fields
	}

	filled := make([]Field, 0, len(fields)+2)
	cursor := 0
	for _, f := range fields {
		if f.Start > cursor {
			filled = append(filled, Field{
				Name:  "unknown",
				Start: cursor,
				End:   f.Start,
				Label: LabelUnknown,
			})
		}
		filled = append(filled, f)
		if f.End > cursor {
			cursor = f.End
		}
	}
	if cursor < l {
		filled = append(filled, Field{
			Name:  "unknown",
			Start: cursor,
			End:   l,
			Label: LabelUnknown,
		})
	}
	return filled
}

// commonPrefixLength returns L = min_i |m_i|, the shared analysis window
// for a message type (spec §4.I).
func commonPrefixLength(members []demod.Message) int {
	l := len(members[0].Bits)
	for _, m := range members[1:] {
		if len(m.Bits) < l {
			l = len(m.Bits)
		}
	}
	return l
}

// rangeSet tracks which bit offsets within [0, L) are already assigned to
// a field, so later stages only consider byte-aligned windows that don't
// overlap earlier ones.
type rangeSet struct {
	taken []bool
}

func newRangeSet(l int) *rangeSet {
	return &rangeSet{taken: make([]bool, l)}
}

func (r *rangeSet) mark(start, end int) {
	for i := start; i < end && i < len(r.taken); i++ {
		r.taken[i] = true
	}
}

func (r *rangeSet) free(start, end int) bool {
	if start < 0 || end > len(r.taken) || start >= end {
		return false
	}
	for i := start; i < end; i++ {
		if r.taken[i] {
			return false
		}
	}
	return true
}
