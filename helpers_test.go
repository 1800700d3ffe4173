package i3s

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

const sceneLayerJSON = `{
  "id": 0,
  "version": "1.7",
  "layerType": "3DObject",
  "store": {
    "version": "1.7",
    "profile": "meshpyramids",
    "defaultGeometrySchema": {
      "geometryType": "triangles",
      "topology": "PerAttributeArray",
      "header": [
        {"property": "vertexCount", "type": "UInt32"},
        {"property": "featureCount", "type": "UInt32"}
      ],
      "ordering": ["position", "normal", "uv0", "color", "region"],
      "vertexAttributes": {
        "position": {"valueType": "Float32", "valuesPerElement": 3},
        "normal": {"valueType": "Float32", "valuesPerElement": 3},
        "uv0": {"valueType": "Float32", "valuesPerElement": 2},
        "color": {"valueType": "UInt8", "valuesPerElement": 4},
        "region": {"valueType": "UInt16", "valuesPerElement": 4}
      },
      "featureAttributeOrder": ["id", "faceRange"],
      "featureAttributes": {
        "id": {"valueType": "UInt64", "valuesPerElement": 1},
        "faceRange": {"valueType": "UInt32", "valuesPerElement": 2}
      }
    }
  }
}`

func testTileset(t *testing.T) *Tileset {
	t.Helper()
	ts, err := ParseTileset([]byte(sceneLayerJSON))
	if err != nil {
		t.Fatalf("ParseTileset failed: %v", err)
	}
	return ts
}

func testLayout(t *testing.T) *FeatureDataLayout {
	t.Helper()
	layout, err := NewFeatureDataLayout(testTileset(t))
	if err != nil {
		t.Fatalf("NewFeatureDataLayout failed: %v", err)
	}
	return layout
}

// geometry is the content of an uncompressed buffer laid out per sceneLayerJSON.
// Nil sections are left out of the buffer.
type geometry struct {
	vertexCount  uint32
	featureCount uint32
	position     []float32
	normal       []float32
	uv0          []float32
	color        []uint8
	region       []uint16
	id           []uint64
	faceRange    []uint32
}

func (g geometry) bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, g.vertexCount)
	binary.Write(buf, binary.LittleEndian, g.featureCount)
	for _, section := range []interface{}{g.position, g.normal, g.uv0, g.color, g.region, g.id, g.faceRange} {
		switch v := section.(type) {
		case []float32:
			if v != nil {
				binary.Write(buf, binary.LittleEndian, v)
			}
		case []uint8:
			if v != nil {
				buf.Write(v)
			}
		case []uint16:
			if v != nil {
				binary.Write(buf, binary.LittleEndian, v)
			}
		case []uint32:
			if v != nil {
				binary.Write(buf, binary.LittleEndian, v)
			}
		case []uint64:
			if v != nil {
				binary.Write(buf, binary.LittleEndian, v)
			}
		}
	}
	return buf.Bytes()
}

// twoTriangles is a full uncompressed tile: six vertices, two features.
func twoTriangles() geometry {
	return geometry{
		vertexCount:  6,
		featureCount: 2,
		position:     []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 2, 1, 0, 1, 2, 0},
		normal:       []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		uv0:          []float32{0, 0, 1, 0, 0, 1, 1, 1, 0, 1, 1, 0},
		color:        []uint8{0, 128, 255, 255, 0, 128, 255, 255, 0, 128, 255, 255, 0, 128, 255, 255, 0, 128, 255, 255, 0, 128, 255, 255},
		region:       []uint16{0, 0, 65535, 65535, 0, 0, 65535, 65535, 0, 0, 65535, 65535, 0, 0, 65535, 65535, 0, 0, 65535, 65535, 0, 0, 65535, 65535},
		id:           []uint64{7, 9},
		faceRange:    []uint32{0, 0, 1, 1},
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
