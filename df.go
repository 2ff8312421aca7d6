// Package df holds the pieces shared by the panel tools: typed vectors, column metadata,
// delimited-file reading, a read-only database dialect and PNG plotting.
//
// The in-memory data frame built from these pieces lives in df/mem.
package df

import "fmt"

// DataTypes are the types of data that the package supports
type DataTypes uint8

// values of DataTypes
const (
	DTunknown DataTypes = 0 + iota
	DTstring
	DTfloat
	DTint
)

// MaxDT is max value of DataTypes type
const MaxDT = DTint

//go:generate stringer -type=DataTypes

func DTFromString(nm string) DataTypes {
	var nms []string
	for ind := DataTypes(0); ind <= MaxDT; ind++ {
		nms = append(nms, fmt.Sprintf("%v", ind))
	}

	pos := position(nm, nms)
	if pos < 0 {
		return DTunknown
	}

	return DataTypes(uint8(pos))
}

func (d DataTypes) IsNumeric() bool {
	return d == DTfloat || d == DTint
}

// *********** Category Map ***********

// CategoryMap maps the distinct values of a column to consecutive integer codes.
type CategoryMap map[any]int

// Levels returns the number of distinct values in the map.
func (cm CategoryMap) Levels() int {
	return len(cm)
}

func (cm CategoryMap) Max() int {
	var maxVal *int
	for _, v := range cm {
		if maxVal == nil {
			maxVal = new(int)
			*maxVal = v
		}

		if v > *maxVal {
			*maxVal = v
		}
	}

	if maxVal == nil {
		return -1
	}

	return *maxVal
}
