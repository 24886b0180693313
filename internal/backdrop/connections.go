package backdrop

// LineBuffer is a fixed-capacity segment buffer reused every frame.
// Format: [x0, y0, z0, x1, y1, z1] * capacity. Entries past Segments are zero
// so a renderer drawing the whole buffer only emits degenerate lines.
type LineBuffer struct {
	Data     []float32
	Segments int
}

// NewLineBuffer allocates room for maxSegments segments.
func NewLineBuffer(maxSegments int) *LineBuffer {
	if maxSegments < 0 {
		maxSegments = 0
	}
	return &LineBuffer{Data: make([]float32, maxSegments*FloatsPerLine)}
}

// Cap returns the maximum number of segments.
func (lb *LineBuffer) Cap() int { return len(lb.Data) / FloatsPerLine }

func (lb *LineBuffer) put(i int, x0, y0, z0, x1, y1, z1 float32) {
	o := i * FloatsPerLine
	d := lb.Data[o : o+FloatsPerLine]
	d[0], d[1], d[2] = x0, y0, z0
	d[3], d[4], d[5] = x1, y1, z1
}

// zeroTail clears everything after the first n segments.
func (lb *LineBuffer) zeroTail(n int) {
	tail := lb.Data[n*FloatsPerLine:]
	for i := range tail {
		tail[i] = 0
	}
	lb.Segments = n
}

// Release drops the backing storage.
func (lb *LineBuffer) Release() {
	lb.Data = nil
	lb.Segments = 0
}

// BuildConnections fills lb according to def's policy and returns the
// number of segments written. It never writes more than
// min(def.MaxConnections, lb.Cap()) segments.
func BuildConnections(lb *LineBuffer, def *Definition, ps *ParticleState) int {
	limit := def.MaxConnections
	if c := lb.Cap(); limit > c {
		limit = c
	}
	switch def.Policy {
	case LightTrail:
		aux, _ := ps.Aux.(*TrailAux)
		if aux == nil {
			lb.zeroTail(0)
			return 0
		}
		return buildTrailLines(lb, aux.Trails, limit)
	default:
		return buildNearestLines(lb, ps.Positions, ps.Count, def.MaxDistance, limit)
	}
}

// buildNearestLines links particle i to each of the next NeighborWindow
// particles closer than maxDist, in ascending (i, j) order, stopping at limit.
func buildNearestLines(lb *LineBuffer, pos []float32, count int, maxDist float64, limit int) int {
	n := 0
	maxSq := float32(maxDist * maxDist)
	if limit <= 0 {
		lb.zeroTail(0)
		return 0
	}
scan:
	for i := 0; i < count; i++ {
		oi := i * FloatsPerPoint
		xi, yi, zi := pos[oi], pos[oi+1], pos[oi+2]
		end := i + NeighborWindow
		if end > count-1 {
			end = count - 1
		}
		for j := i + 1; j <= end; j++ {
			oj := j * FloatsPerPoint
			dx := pos[oj] - xi
			dy := pos[oj+1] - yi
			dz := pos[oj+2] - zi
			if dx*dx+dy*dy+dz*dz >= maxSq {
				continue
			}
			lb.put(n, xi, yi, zi, pos[oj], pos[oj+1], pos[oj+2])
			n++
			if n >= limit {
				break scan
			}
		}
	}
	lb.zeroTail(n)
	return n
}

// buildTrailLines emits one segment per consecutive pair of trail points,
// oldest to newest, particle by particle, stopping at limit.
func buildTrailLines(lb *LineBuffer, trails []Trail, limit int) int {
	n := 0
scan:
	for t := range trails {
		tr := &trails[t]
		for k := 1; k < tr.Len(); k++ {
			if n >= limit {
				break scan
			}
			a := tr.At(k - 1)
			b := tr.At(k)
			lb.put(n, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
			n++
		}
	}
	lb.zeroTail(n)
	return n
}
