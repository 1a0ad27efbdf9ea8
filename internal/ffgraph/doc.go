// Package ffgraph builds ffmpeg argument lists from declarative composition
// requests. Compositions are modeled as a typed filter graph whose stream
// labels are generated centrally and serialized last, so varying layer
// counts can never collide. Builders are pure: probe data arrives on the
// request, and identical requests always yield identical argument lists.
package ffgraph
