// Package wavelet implements a Daubechies Discrete Wavelet Transform over
// periodic boundaries.
//
// The 1D transform decomposes a sequence into scaling (low-pass) and wavelet
// (high-pass) halves by circular convolution followed by downsampling by 2.
// Inputs whose length is not a power of two are zero-padded to the next power
// of two; the original length is kept so reconstructions can be truncated.
//
// The 2D transform is separable: the 1D transform runs over every row, the two
// half-width results are transposed and transformed again, yielding four
// subbands:
//
//	scaling    = low(rows)  then low(cols)
//	horizontal = low(rows)  then high(cols)
//	vertical   = high(rows) then low(cols)
//	diagonal   = high(rows) then high(cols)
//
// Cascade1D and Cascade2D repeat the decomposition on the scaling output to
// build a multiresolution pyramid. Interactive1D and Interactive2D keep an
// editable overlay of the detail coefficients for every pyramid level and
// recompose the signal from the scaling band plus the overlays.
package wavelet
