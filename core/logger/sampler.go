package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type ratio struct{ num, den uint64 }

// ratioSampler lets num out of every den events through. A nil ratio lets everything through.
type ratioSampler struct {
	ratio atomic.Pointer[ratio]
	seq   atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the sequence. Non-positive values disable sampling.
func (s *ratioSampler) Set(num, den int) {
	s.seq.Store(0)
	if num <= 0 || den <= 0 {
		s.ratio.Store(nil)
		return
	}
	s.ratio.Store(&ratio{num: uint64(min(num, den)), den: uint64(den)})
}

func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil {
		return true
	}
	return (s.seq.Add(1)-1)%r.den < r.num
}

// parseRatioSpec accepts "n/d" or a bare "d" meaning 1/d. Invalid input yields 0,0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if n, d, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(n))
		den, err2 := strconv.Atoi(strings.TrimSpace(d))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
