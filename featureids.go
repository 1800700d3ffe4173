package i3s

import "math"

// flattenFeatureIdsByFaceRanges expands compact feature ids to one id per
// triangle vertex. faceRange holds [start, end] triangle pairs; the Nth pair
// takes the Nth compact id. Pairs are filled back to back from the start of
// the output, which has (lastEnd+1)*3 entries but never more than limit.
// It returns the entry count the face ranges asked for.
func flattenFeatureIdsByFaceRanges(attributes Attributes, limit int) int {
	id, faceRange := attributes[AttributeID], attributes[AttributeFaceRange]
	if id == nil || faceRange == nil || id.Value == nil || faceRange.Value == nil {
		return 0
	}
	ranges := faceRange.Value
	if ranges.Len() == 0 {
		return 0
	}

	featureIds := id.Value
	last := ranges.Float64(ranges.Len() - 1)
	if math.IsNaN(last) || last < -1 {
		last = -1
	}
	if last > math.MaxUint32 {
		last = math.MaxUint32
	}
	requested := (int(last) + 1) * 3
	length := requested
	if length > limit {
		length = limit
	}
	ordered := make(Uint32Array, length)

	featureIndex := 0
	startIndex := 0
	for i := 1; i < ranges.Len() && startIndex < length; i += 2 {
		var fillID uint32
		if featureIndex < featureIds.Len() {
			fillID = toUint32(featureIds.Float64(featureIndex))
		}
		triangles := int(ranges.Float64(i)-ranges.Float64(i-1)) + 1
		endIndex := startIndex + triangles*3

		fillUint32(ordered, fillID, startIndex, endIndex)

		featureIndex++
		startIndex = endIndex
	}

	id.Value = ordered
	return requested
}

// toUint32 truncates v and wraps it modulo 2^32. NaN and infinities map to 0.
func toUint32(v float64) uint32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(v), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

// fillUint32 sets a[start:end] to v, clamping the bounds to a.
func fillUint32(a Uint32Array, v uint32, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(a) {
		end = len(a)
	}
	for i := start; i < end; i++ {
		a[i] = v
	}
}

// featureIdsFromFeatureIndexMetadata returns the feature id table attached to
// the per-vertex feature index attribute, if any.
func featureIdsFromFeatureIndexMetadata(featureIndex *NormalizedAttribute) []int32 {
	if featureIndex == nil || featureIndex.Metadata == nil {
		return nil
	}
	return featureIndex.Metadata[MetadataFeatureIDs].IntArray
}

// flattenFeatureIdsByFeatureIndices replaces each per-vertex feature index
// with the feature id it points to. Indices outside the table become NaN.
func flattenFeatureIdsByFeatureIndices(attributes Attributes, featureIds []int32) {
	id := attributes[AttributeID]
	if id == nil || id.Value == nil {
		return
	}
	indices := id.Value
	result := make(Float32Array, indices.Len())

	for i := range result {
		idx := int(indices.Float64(i))
		if idx < 0 || idx >= len(featureIds) {
			result[i] = float32(math.NaN())
			continue
		}
		result[i] = float32(featureIds[idx])
	}

	id.Value = result
}
