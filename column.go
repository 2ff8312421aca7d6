package df

import "fmt"

// CC interface defines the methods of ColCore
type CC interface {
	Core() *ColCore
	CategoryMap() CategoryMap
	DataType() DataTypes
	Name() string
	Rename(newName string) error
}

// *********** ColCore ***********

// ColCore implements the metadata common to all columns.
type ColCore struct {
	name string
	dt   DataTypes

	catMap CategoryMap
}

func NewColCore(dt DataTypes, ops ...ColOpt) (*ColCore, error) {
	c := &ColCore{dt: dt}

	for _, op := range ops {
		if e := op(c); e != nil {
			return nil, e
		}
	}

	return c, nil
}

// *********** Setters ***********

type ColOpt func(c CC) error

func ColCatMap(cm CategoryMap) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColCatMap")
		}

		c.Core().catMap = cm

		return nil
	}
}

func ColDataType(dt DataTypes) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColDataType")
		}

		c.Core().dt = dt

		return nil
	}
}

func ColName(name string) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColName")
		}

		if c.Name() != "" {
			return fmt.Errorf("column already named -- use Rename method")
		}

		if e := validName(name); e != nil {
			return e
		}

		c.Core().name = name

		return nil
	}
}

// *********** Methods ***********

func (c *ColCore) CategoryMap() CategoryMap {
	return c.catMap
}

func (c *ColCore) Copy() *ColCore {
	return &ColCore{name: c.name, dt: c.dt, catMap: c.catMap}
}

// Core returns itself so structs embedding *ColCore expose it through CC.
func (c *ColCore) Core() *ColCore {
	return c
}

func (c *ColCore) DataType() DataTypes {
	return c.dt
}

func (c *ColCore) Name() string {
	return c.name
}

func (c *ColCore) Rename(newName string) error {
	if e := validName(newName); e != nil {
		return e
	}

	c.name = newName

	return nil
}
