package i3s

import (
	"math"

	"github.com/flywave/go-proj"
	mat4d "github.com/flywave/go3d/float64/mat4"
	vec3d "github.com/flywave/go3d/float64/vec3"
	vec4d "github.com/flywave/go3d/float64/vec4"
)

const llh_ecef_radiusX = 6378137.0
const llh_ecef_radiusY = 6378137.0
const llh_ecef_radiusZ = 6356752.3142451793

const degenerateEpsilon = 1e-14

// Geodesy converts cartographic degrees and meters to geocentric cartesian.
type Geodesy interface {
	ToCartesian(lon, lat, height float64) (vec3d.T, error)
}

// Ellipsoid is a reference ellipsoid centered at the earth's center.
type Ellipsoid struct {
	Radii               vec3d.T
	RadiiSquared        vec3d.T
	OneOverRadiiSquared vec3d.T
}

var WGS84 = NewEllipsoid(llh_ecef_radiusX, llh_ecef_radiusY, llh_ecef_radiusZ)

func NewEllipsoid(x, y, z float64) *Ellipsoid {
	return &Ellipsoid{
		Radii:               vec3d.T{x, y, z},
		RadiiSquared:        vec3d.T{x * x, y * y, z * z},
		OneOverRadiiSquared: vec3d.T{1 / (x * x), 1 / (y * y), 1 / (z * z)},
	}
}

func (e *Ellipsoid) ToCartesian(lon, lat, height float64) (vec3d.T, error) {
	return e.CartographicToCartesian(lon, lat, height), nil
}

// CartographicToCartesian takes longitude and latitude in degrees.
func (e *Ellipsoid) CartographicToCartesian(lon, lat, height float64) vec3d.T {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180
	cosPhi := math.Cos(phi)

	n := vec3d.T{cosPhi * math.Cos(lambda), cosPhi * math.Sin(lambda), math.Sin(phi)}
	n = n.Normalized()

	k := vec3d.T{e.RadiiSquared[0] * n[0], e.RadiiSquared[1] * n[1], e.RadiiSquared[2] * n[2]}
	gamma := math.Sqrt(vec3d.Dot(&n, &k))
	k.Scale(1 / gamma)
	n.Scale(height)

	return vec3d.T{k[0] + n[0], k[1] + n[1], k[2] + n[2]}
}

// GeodeticSurfaceNormal returns the unit normal at a cartesian point.
func (e *Ellipsoid) GeodeticSurfaceNormal(p vec3d.T) vec3d.T {
	n := vec3d.T{
		p[0] * e.OneOverRadiiSquared[0],
		p[1] * e.OneOverRadiiSquared[1],
		p[2] * e.OneOverRadiiSquared[2],
	}
	return n.Normalized()
}

// EastNorthUpToFixedFrame returns the local east-north-up frame at origin
// expressed in the earth fixed frame. Columns are east, north, up, origin.
func (e *Ellipsoid) EastNorthUpToFixedFrame(origin vec3d.T) mat4d.T {
	var east, north, up vec3d.T

	if math.Abs(origin[0]) < degenerateEpsilon && math.Abs(origin[1]) < degenerateEpsilon {
		// at the poles or the center east is fixed to +y
		sign := 1.0
		if origin[2] < 0 {
			sign = -1.0
		}
		east = vec3d.T{0, 1, 0}
		north = vec3d.T{-sign, 0, 0}
		up = vec3d.T{0, 0, sign}
	} else {
		up = e.GeodeticSurfaceNormal(origin)
		east = vec3d.T{-origin[1], origin[0], 0}
		east = east.Normalized()
		north = vec3d.Cross(&up, &east)
		north = north.Normalized()
	}

	return mat4d.T{
		vec4d.T{east[0], east[1], east[2], 0},
		vec4d.T{north[0], north[1], north[2], 0},
		vec4d.T{up[0], up[1], up[2], 0},
		vec4d.T{origin[0], origin[1], origin[2], 1},
	}
}

// ProjGeodesy converts through the PROJ library.
type ProjGeodesy struct{}

func (ProjGeodesy) ToCartesian(lon, lat, height float64) (vec3d.T, error) {
	x, y, z, err := proj.Lonlat2Ecef(lon, lat, height)
	if err != nil {
		return vec3d.T{}, err
	}
	return vec3d.T{x, y, z}, nil
}
