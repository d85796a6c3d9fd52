package texgen

// hashNoise returns deterministic lattice noise in [0, 1].
func hashNoise(x, y, seed int) float64 {
	n := uint64(int64(x))*374761393 + uint64(int64(y))*668265263 + uint64(int64(seed))*1274126177
	n = (n ^ (n >> 13)) * 1103515245
	n ^= n >> 16
	return float64(n&0x7fffffff) / float64(0x7fffffff)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothNoise bilinearly interpolates hash noise with a smoothstep fade.
func smoothNoise(x, y float64, seed int, scale float64) float64 {
	sx := x / scale
	sy := y / scale
	ix, iy := int(sx), int(sy)
	fx, fy := sx-float64(ix), sy-float64(iy)
	fx = fx * fx * (3 - 2*fx)
	fy = fy * fy * (3 - 2*fy)

	v00 := hashNoise(ix, iy, seed)
	v10 := hashNoise(ix+1, iy, seed)
	v01 := hashNoise(ix, iy+1, seed)
	v11 := hashNoise(ix+1, iy+1, seed)

	v0 := lerp(v00, v10, fx)
	v1 := lerp(v01, v11, fx)
	return lerp(v0, v1, fy)
}

// fbm layers octaves of smooth noise, halving amplitude and doubling
// frequency each octave, normalized back to [0, 1].
func fbm(x, y float64, seed, octaves int, scale float64) float64 {
	value := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		value += smoothNoise(x*frequency, y*frequency, seed+i*100, scale) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		frequency *= 2.0
	}
	return value / maxVal
}
