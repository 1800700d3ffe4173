package i3s

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestReadHeader(t *testing.T) {
	layout := testLayout(t)
	data := twoTriangles().bytes()

	h, err := ReadHeader(data, layout.Header)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.VertexCount != 6 || h.FeatureCount != 2 || h.ByteOffset != 8 {
		t.Errorf("unexpected header %+v", h)
	}

	if _, err := ReadHeader(data[:6], layout.Header); !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("expected ErrTruncatedHeader, got %v", err)
	}

	// only declared properties advance the offset
	h, err = ReadHeader(data, layout.Header[:1])
	if err != nil {
		t.Fatal(err)
	}
	if h.ByteOffset != 4 || h.FeatureCount != 0 {
		t.Errorf("unexpected partial header %+v", h)
	}
}

func TestReadAttributesExactBuffer(t *testing.T) {
	layout := testLayout(t)
	g := twoTriangles()
	data := g.bytes()

	attrs, offset, truncated, err := ReadAttributes(data, 8, layout.AttributesOrder, layout.VertexAttributes, 6)
	if err != nil {
		t.Fatalf("ReadAttributes failed: %v", err)
	}
	if truncated != nil {
		t.Fatalf("unexpected truncation: %v", truncated)
	}

	expected := map[string]int{
		AttributePosition: 18,
		AttributeNormal:   18,
		AttributeUV0:      12,
		AttributeColor:    24,
		AttributeRegion:   24,
	}
	for name, n := range expected {
		attr, ok := attrs[name]
		if !ok {
			t.Errorf("missing attribute %s", name)
			continue
		}
		if attr.Value.Len() != n {
			t.Errorf("%s: expected %d values, got %d", name, n, attr.Value.Len())
		}
		if attr.Source != SourceLayoutReader {
			t.Errorf("%s: unexpected source %v", name, attr.Source)
		}
	}

	// 8 + 72 + 72 + 48 + 24 + 48
	if offset != 272 {
		t.Errorf("expected offset 272, got %d", offset)
	}

	if attrs[AttributePosition].Value.Float64(3) != 1 {
		t.Errorf("unexpected position value %v", attrs[AttributePosition].Value.Float64(3))
	}
	if attrs[AttributePosition].Type != GL_FLOAT || attrs[AttributePosition].Size != 3 {
		t.Errorf("unexpected position type/size")
	}

	features, offset, truncated, err := ReadAttributes(data, offset, layout.FeatureAttributeOrder, layout.FeatureAttributes, 2)
	if err != nil || truncated != nil {
		t.Fatalf("feature pass: %v %v", err, truncated)
	}
	if offset != len(data) {
		t.Errorf("expected offset %d, got %d", len(data), offset)
	}
	if features[AttributeID].Value.Float64(1) != 9 {
		t.Errorf("unexpected id %v", features[AttributeID].Value.Float64(1))
	}
	if features[AttributeFaceRange].Value.Len() != 4 {
		t.Errorf("unexpected faceRange length %d", features[AttributeFaceRange].Value.Len())
	}
}

func TestReadAttributesTruncated(t *testing.T) {
	layout := testLayout(t)
	g := twoTriangles()
	g.region = nil
	g.id = nil
	g.faceRange = nil
	data := g.bytes()

	attrs, offset, truncated, err := ReadAttributes(data, 8, layout.AttributesOrder, layout.VertexAttributes, 6)
	if err != nil {
		t.Fatalf("ReadAttributes failed: %v", err)
	}
	for _, name := range []string{AttributePosition, AttributeNormal, AttributeUV0, AttributeColor} {
		if attrs[name] == nil {
			t.Errorf("expected %s to be decoded", name)
		}
	}
	if _, ok := attrs[AttributeRegion]; ok {
		t.Error("expected region to be absent")
	}
	if truncated == nil || truncated.Attribute != AttributeRegion {
		t.Fatalf("expected truncation at region, got %v", truncated)
	}
	if truncated.Offset != offset || truncated.Need != 48 || truncated.Have != 0 {
		t.Errorf("unexpected truncation %+v", truncated)
	}
	if offset != len(data) {
		t.Errorf("expected offset %d, got %d", len(data), offset)
	}
}

func TestReadAttributesStopsAtFirstMissing(t *testing.T) {
	layout := testLayout(t)
	g := twoTriangles()
	data := g.bytes()
	// cut inside normals: position fits, normal does not, later ones must not appear
	data = data[:8+72+10]

	attrs, _, truncated, err := ReadAttributes(data, 8, layout.AttributesOrder, layout.VertexAttributes, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 1 || attrs[AttributePosition] == nil {
		t.Errorf("expected only position, got %d attributes", len(attrs))
	}
	if truncated == nil || truncated.Attribute != AttributeNormal {
		t.Errorf("expected truncation at normal, got %v", truncated)
	}
}

func TestReadAttributesColorNormalized(t *testing.T) {
	layout := testLayout(t)
	attrs, _, _, err := ReadAttributes(twoTriangles().bytes(), 8, layout.AttributesOrder, layout.VertexAttributes, 6)
	if err != nil {
		t.Fatal(err)
	}
	color := attrs[AttributeColor]
	if !color.Normalized {
		t.Error("expected color to be normalized")
	}
	if color.Value.Float64(0) != 0 || color.Value.Float64(1) != 128 || color.Value.Float64(2) != 255 {
		t.Error("color values must stay in 0-255")
	}
	if attrs[AttributeNormal].Normalized {
		t.Error("normal must not be normalized")
	}
}

func TestReadAttributesUnsupportedType(t *testing.T) {
	layouts := map[string]AttributeLayout{"position": {ValueType: "Float16", ValuesPerElement: 3}}
	_, _, _, err := ReadAttributes(make([]byte, 64), 0, []string{"position"}, layouts, 1)
	if !errors.Is(err, ErrUnsupportedValueType) {
		t.Errorf("expected ErrUnsupportedValueType, got %v", err)
	}
}

func TestLayoutReaderMergesPasses(t *testing.T) {
	layout := testLayout(t)
	// a feature attribute named like a vertex attribute wins the merge
	layout.FeatureAttributeOrder = append(layout.FeatureAttributeOrder, AttributeNormal)
	layout.FeatureAttributes[AttributeNormal] = AttributeLayout{ValueType: UInt8, ValuesPerElement: 1}

	data := append(twoTriangles().bytes(), 5, 6)
	geom, err := (&layoutReader{layout: layout}).produce(context.Background(), data)
	if err != nil {
		t.Fatalf("produce failed: %v", err)
	}
	if geom.vertexCount != 6 {
		t.Errorf("expected 6 vertices, got %d", geom.vertexCount)
	}
	normal := geom.attributes[AttributeNormal]
	if normal.Value.Len() != 2 || normal.Value.Float64(0) != 5 {
		t.Errorf("expected feature pass normal, got %v", normal.Value)
	}
	if len(geom.truncations) != 0 {
		t.Errorf("unexpected truncations %v", geom.truncations)
	}
}

func TestReadHeaderRejectsInvalidCounts(t *testing.T) {
	buf := func(vertexCount, featureCount interface{}) []byte {
		b := new(bytes.Buffer)
		binary.Write(b, binary.LittleEndian, vertexCount)
		binary.Write(b, binary.LittleEndian, featureCount)
		return b.Bytes()
	}
	tests := map[string]struct {
		typ  ValueType
		data []byte
	}{
		"negative int32":   {Int32, buf(int32(-1), int32(0))},
		"negative float32": {Float32, buf(float32(-3), float32(0))},
		"nan float32":      {Float32, buf(float32(math.NaN()), float32(0))},
		"fractional":       {Float32, buf(float32(0), float32(1.5))},
		"huge float32":     {Float32, buf(float32(1e12), float32(0))},
	}
	for name, tt := range tests {
		header := []HeaderAttribute{
			{Property: HeaderVertexCount, Type: tt.typ},
			{Property: HeaderFeatureCount, Type: tt.typ},
		}
		if _, err := ReadHeader(tt.data, header); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("%s: expected ErrInvalidHeader, got %v", name, err)
		}
	}
}

func TestLayoutReaderNegativeVertexCount(t *testing.T) {
	layout := &FeatureDataLayout{
		Header: []HeaderAttribute{
			{Property: HeaderVertexCount, Type: Int32},
			{Property: HeaderFeatureCount, Type: Int32},
		},
		AttributesOrder:  []string{AttributePosition},
		VertexAttributes: map[string]AttributeLayout{AttributePosition: {ValueType: Float32, ValuesPerElement: 3}},
	}
	b := new(bytes.Buffer)
	binary.Write(b, binary.LittleEndian, []int32{-1, 0})
	binary.Write(b, binary.LittleEndian, []float32{1, 2, 3})

	if _, err := (&layoutReader{layout: layout}).produce(context.Background(), b.Bytes()); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestReadAttributesNegativeElements(t *testing.T) {
	layouts := map[string]AttributeLayout{AttributePosition: {ValueType: Float32, ValuesPerElement: -3}}
	attrs, offset, truncated, err := ReadAttributes(make([]byte, 64), 8, []string{AttributePosition}, layouts, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 0 || offset != 8 {
		t.Errorf("expected nothing decoded, got %d attributes at offset %d", len(attrs), offset)
	}
	if truncated == nil || truncated.Attribute != AttributePosition {
		t.Errorf("expected truncation at position, got %v", truncated)
	}
}

func TestLayoutReaderBoundsFaceRanges(t *testing.T) {
	g := twoTriangles()
	g.faceRange = []uint32{0, 0, 1, 0xFFFFFFFE}
	geom, err := (&layoutReader{layout: testLayout(t)}).produce(context.Background(), g.bytes())
	if err != nil {
		t.Fatal(err)
	}
	if geom.faceRangeOverflow == nil || geom.faceRangeOverflow.Limit != 6 {
		t.Fatalf("expected overflow bounded by vertex count, got %v", geom.faceRangeOverflow)
	}
	if n := geom.attributes[AttributeID].Value.Len(); n != 6 {
		t.Errorf("expected 6 feature ids, got %d", n)
	}
}
