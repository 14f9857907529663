// Package staging keeps the download directory from accumulating leftovers of
// interrupted jobs.
package staging
