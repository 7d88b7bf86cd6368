package shapes

// ConvOutputSize returns the number of output positions of a convolution
// along one axis.
//
// Rules:
//
//	pad=false, s=1:  out = in - k + 1
//	pad=false, s>1:  out = floor((in - k) / s) + 1
//	pad=true,  s=1:  out = in
//	pad=true,  s>1:  out = floor((in + 2*floor(k/2) - k) / s) + 1
//
// A stride below 1 is an invalid argument. A kernel that does not fit an
// unpadded input is a shape error.
func ConvOutputSize(in, kernel, stride int, pad bool) (int, error) {
	if stride <= 0 {
		return 0, Invalid("convolution", "stride must be positive, got %d", stride)
	}
	if kernel <= 0 {
		return 0, Invalid("convolution", "kernel extent must be positive, got %d", kernel)
	}
	if in <= 0 {
		return 0, Incompatible("convolution", []int{in}, "input extent must be positive")
	}

	if !pad {
		if kernel > in {
			return 0, Incompatible("convolution", []int{in}, "kernel extent %d exceeds unpadded input", kernel)
		}
		if stride == 1 {
			return in - kernel + 1, nil
		}
		return (in-kernel)/stride + 1, nil
	}

	if stride == 1 {
		return in, nil
	}
	p := kernel / 2
	span := in + 2*p - kernel
	if span < 0 {
		return 0, Incompatible("convolution", []int{in}, "kernel extent %d exceeds padded input", kernel)
	}
	return span/stride + 1, nil
}

// ConvOutputShape applies ConvOutputSize independently to every axis of in.
//
// strides and pad are broadcast when they hold a single value; otherwise they
// must have one entry per axis. An empty strides slice means stride 1.
func ConvOutputShape(in, kernel, strides []int, pad []bool) ([]int, error) {
	if len(kernel) != len(in) {
		return nil, Incompatible("convolution", in, "kernel rank %d does not match input rank %d", len(kernel), len(in))
	}
	s, err := BroadcastInts("strides", strides, len(in), 1)
	if err != nil {
		return nil, err
	}
	p, err := BroadcastBools("pad", pad, len(in), false)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(in))
	for i := range in {
		n, err := ConvOutputSize(in[i], kernel[i], s[i], p[i])
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// LowPad returns the number of implicit zeros before the first input
// position of a padded axis.
func LowPad(kernel int, pad bool) int {
	if !pad {
		return 0
	}
	return kernel / 2
}

// BroadcastInts expands v to n entries. An empty v yields n copies of def.
func BroadcastInts(what string, v []int, n, def int) ([]int, error) {
	out := make([]int, n)
	switch len(v) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = v[0]
		}
	case n:
		copy(out, v)
	default:
		return nil, Invalid("convolution", "%s has %d entries, expected 1 or %d", what, len(v), n)
	}
	return out, nil
}

// BroadcastBools expands v to n entries. An empty v yields n copies of def.
func BroadcastBools(what string, v []bool, n int, def bool) ([]bool, error) {
	out := make([]bool, n)
	switch len(v) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = v[0]
		}
	case n:
		copy(out, v)
	default:
		return nil, Invalid("convolution", "%s has %d entries, expected 1 or %d", what, len(v), n)
	}
	return out, nil
}
