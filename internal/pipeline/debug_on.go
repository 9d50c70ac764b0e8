//go:build avplay_debug_codec

package pipeline

const debugCodec = true
