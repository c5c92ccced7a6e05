// Package charts renders the explorer's PNG figures: the publications by
// year bar chart, horizontal top-N bar charts and the title word cloud.
//
// Bar charts are drawn with the go-chart raster renderer so that empty and
// single-bucket data still produce a framed chart with labelled axes. The
// word cloud is typeset with golang.org/x/image using the Go Regular font.
package charts
