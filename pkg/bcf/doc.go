// Package bcf models the BCF 2.1 REST viewpoint payload exchanged with the review
// web application: cameras, clipping planes, lines and component visibility,
// selection and coloring. All lengths are in meters in BCF world space.
package bcf
