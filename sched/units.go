package sched

// UnitSystem converts deck-unit numeric values to SI. It is consumed as an
// external collaborator: the engine asks for the scaling of a named
// dimension and never hardcodes a conversion factor itself.
type UnitSystem interface {
	Parse(dimension string) Dimension
	Name() string
}

// Dimension is one parsed unit dimension.
type Dimension interface {
	SIScaling() float64
}

type staticDimension float64

func (d staticDimension) SIScaling() float64 { return float64(d) }

type tableUnits struct {
	name  string
	scale map[string]float64
}

func (u *tableUnits) Name() string { return u.name }

func (u *tableUnits) Parse(dimension string) Dimension {
	if s, ok := u.scale[dimension]; ok {
		return staticDimension(s)
	}
	return staticDimension(1.0)
}

// MetricUnits returns the METRIC unit system: bars, sm3/day, metres.
func MetricUnits() UnitSystem {
	return &tableUnits{
		name: "METRIC",
		scale: map[string]float64{
			"Pressure":         1.0e5,         // bar -> Pa
			"Length":           1.0,           // m
			"LiquidVolume":     1.0,           // sm3
			"GasVolume":        1.0,           // sm3
			"Time":             86400.0,       // day -> s
			"LiquidRate":       1.0 / 86400.0, // sm3/day -> sm3/s
			"GasRate":          1.0 / 86400.0, // sm3/day -> sm3/s
			"ReservoirVolume":  1.0 / 86400.0, // rm3/day -> rm3/s
			"Temperature":      1.0,           // degC offset handled upstream
			"Transmissibility": 9.869233e-16 / 86400.0 * 1.0e5,
		},
	}
}

// unitSystemByName recovers a unit system from its serialized name.
func unitSystemByName(name string) UnitSystem {
	if name == "FIELD" {
		return FieldUnits()
	}
	return MetricUnits()
}

// FieldUnits returns the FIELD unit system: psi, stb/day, feet.
func FieldUnits() UnitSystem {
	const (
		psi  = 6894.757
		foot = 0.3048
		stb  = 0.158987294928
		mscf = 28.316846592
		day  = 86400.0
	)
	return &tableUnits{
		name: "FIELD",
		scale: map[string]float64{
			"Pressure":        psi,
			"Length":          foot,
			"LiquidVolume":    stb,
			"GasVolume":       mscf,
			"Time":            day,
			"LiquidRate":      stb / day,
			"GasRate":         mscf / day,
			"ReservoirVolume": stb / day,
			"Temperature":     5.0 / 9.0,
		},
	}
}
