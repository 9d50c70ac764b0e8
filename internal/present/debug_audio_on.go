//go:build avplay_debug_audio

package present

const debugAudio = true
