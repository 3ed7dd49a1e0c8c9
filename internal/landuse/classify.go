package landuse

import (
	"fmt"

	"github.com/arealens/arealens/internal/provider"
)

// Class is the land-use bucket an OSM element falls into.
type Class int

const (
	ClassNone Class = iota
	ClassUrban
	ClassAgriculture
	ClassForest
	ClassWater
	ClassOther
)

var landuseClasses = map[string]Class{
	"residential":             ClassUrban,
	"commercial":              ClassUrban,
	"industrial":              ClassUrban,
	"retail":                  ClassUrban,
	"construction":            ClassUrban,
	"garages":                 ClassUrban,
	"railway":                 ClassUrban,
	"farmland":                ClassAgriculture,
	"farmyard":                ClassAgriculture,
	"meadow":                  ClassAgriculture,
	"orchard":                 ClassAgriculture,
	"vineyard":                ClassAgriculture,
	"allotments":              ClassAgriculture,
	"greenhouse_horticulture": ClassAgriculture,
	"plant_nursery":           ClassAgriculture,
	"forest":                  ClassForest,
	"reservoir":               ClassWater,
	"basin":                   ClassWater,
	"salt_pond":               ClassWater,
}

var naturalClasses = map[string]Class{
	"wood":    ClassForest,
	"water":   ClassWater,
	"wetland": ClassWater,
	"bay":     ClassWater,
}

// ClassifyTags buckets an element by its landuse, natural and waterway tags.
// Elements with none of those tags are ClassNone and are not counted.
func ClassifyTags(tags map[string]string) Class {
	if v, ok := tags["landuse"]; ok {
		if c, known := landuseClasses[v]; known {
			return c
		}
		return ClassOther
	}
	if v, ok := tags["natural"]; ok {
		if c, known := naturalClasses[v]; known {
			return c
		}
		return ClassOther
	}
	if _, ok := tags["waterway"]; ok {
		return ClassWater
	}
	return ClassNone
}

// Counts tallies classified elements.
type Counts struct {
	Urban       int
	Agriculture int
	Forest      int
	Water       int
	Other       int
}

// Add counts one element of the given class.
func (c *Counts) Add(class Class) {
	switch class {
	case ClassUrban:
		c.Urban++
	case ClassAgriculture:
		c.Agriculture++
	case ClassForest:
		c.Forest++
	case ClassWater:
		c.Water++
	case ClassOther:
		c.Other++
	case ClassNone:
	}
}

// Total returns the number of counted elements.
func (c Counts) Total() int {
	return c.Urban + c.Agriculture + c.Forest + c.Water + c.Other
}

// FromCounts converts element counts to percentages. The four named classes
// are floored and other takes the remainder, clamped at zero, so the shares
// sum to 100. No counted elements is an empty result.
func FromCounts(c Counts) (*Result, error) {
	total := c.Total()
	if total == 0 {
		return nil, fmt.Errorf("%w: no land-use elements matched", provider.ErrEmptyResult)
	}

	pct := func(n int) int { return n * 100 / total }
	r := &Result{
		Urban:       pct(c.Urban),
		Agriculture: pct(c.Agriculture),
		Forest:      pct(c.Forest),
		Water:       pct(c.Water),
	}
	r.Other = max(0, 100-(r.Urban+r.Agriculture+r.Forest+r.Water))
	return r, nil
}
