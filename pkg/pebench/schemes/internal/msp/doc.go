// Package msp compiles policies into the monotone span programs consumed by
// gofe's ABE schemes.
//
// Every leaf becomes exactly one row labelled with its attribute, so a
// policy that names each attribute once yields a matrix with one row per
// attribute, as FAME requires. A k-of-n gate labelled v gives its i-th child
// the label v + i*e(c+1) + i^2*e(c+2) + ... + i^(k-1)*e(c+k-1), using k-1
// fresh columns. Any k children then combine to v through the inverse of a
// Vandermonde matrix, and fewer than k cannot. AND and OR are the n-of-n and
// 1-of-n cases.
//
// Build produces programs with target (1, 0, ..., 0). ToOnes rewrites one
// for the target (1, 1, ..., 1) that GPSW expects.
package msp
