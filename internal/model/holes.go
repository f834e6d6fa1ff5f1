package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/lib/pq"
)

// MaxHoles bounds both a legacy count and any single hole number.
const MaxHoles = 36

// Holes is the list of hole numbers covered at a tournament. Legacy data
// stored a plain count; a count n unmarshals to [1..n].
type Holes []int64

// HolesFromCount expands a legacy hole count.
func HolesFromCount(n int) (Holes, error) {
	if n < 0 || n > MaxHoles {
		return nil, fmt.Errorf("holes: count %d out of range 0..%d", n, MaxHoles)
	}
	h := make(Holes, n)
	for i := range h {
		h[i] = int64(i + 1)
	}
	return h, nil
}

// Count returns the number of holes.
func (h Holes) Count() int { return len(h) }

// Validate checks every hole number is within 1..MaxHoles.
func (h Holes) Validate() error {
	if len(h) > MaxHoles {
		return fmt.Errorf("holes: %d holes, at most %d allowed", len(h), MaxHoles)
	}
	for _, n := range h {
		if n < 1 || n > MaxHoles {
			return fmt.Errorf("holes: hole %d out of range 1..%d", n, MaxHoles)
		}
	}
	return nil
}

// UnmarshalJSON accepts either an array of hole numbers or a legacy count.
func (h *Holes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*h = nil
		return nil
	}
	if data[0] == '[' {
		var list Holes
		if err := json.Unmarshal(data, (*[]int64)(&list)); err != nil {
			return fmt.Errorf("holes: %w", err)
		}
		if err := list.Validate(); err != nil {
			return err
		}
		*h = list
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("holes: expected array or count: %w", err)
	}
	if n != math.Trunc(n) || n < 0 || n > MaxHoles {
		return fmt.Errorf("holes: count %v out of range 0..%d", n, MaxHoles)
	}
	list, err := HolesFromCount(int(n))
	if err != nil {
		return err
	}
	*h = list
	return nil
}

// Value implements driver.Valuer as a postgres integer array.
func (h Holes) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	return pq.Int64Array(h).Value()
}

// Scan implements sql.Scanner.
func (h *Holes) Scan(src any) error {
	var arr pq.Int64Array
	if err := arr.Scan(src); err != nil {
		return err
	}
	*h = Holes(arr)
	return nil
}
