package life

import _ "embed"

// ComputeShaderSource is the WGSL kernel that advances every cell by one generation.
//
//go:embed assets/life_compute.wgsl
var ComputeShaderSource string

// VertexShaderSource places one quad per cell instance, collapsed when the cell is dead.
//
//go:embed assets/life_vert.wgsl
var VertexShaderSource string

// FragmentShaderSource shades each quad as a soft rounded cell.
//
//go:embed assets/life_frag.wgsl
var FragmentShaderSource string
