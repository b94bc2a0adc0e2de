package audio

// Voice loops one decoded buffer endlessly. A voice is bound to exactly
// one buffer for its whole life; switching sources means destroying the
// voice and building a new one.
type Voice struct {
	data []float32 // interleaved stereo, never mutated
	pos  int
}

func NewVoice(data []float32) *Voice {
	return &Voice{data: data}
}

func (v *Voice) Process(dst []float32) {
	if len(v.data) == 0 {
		clear(dst)
		return
	}
	for n := 0; n < len(dst); {
		c := copy(dst[n:], v.data[v.pos:])
		v.pos += c
		if v.pos >= len(v.data) {
			v.pos = 0
		}
		n += c
	}
}
