//go:build avplay_debug_render

package present

const debugRender = true
