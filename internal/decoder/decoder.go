// Package decoder adapts github.com/erparts/reisen to the abstract media
// decoder interface used by the rest of this module: open_input,
// find_streams, open_decoder, read_packet, seek, decoder.send/receive/flush,
// plus the sample-format and pixel-format conversions. reisen is confined to
// this one package so the pipeline, stream and present packages only ever
// see the shapes below.
package decoder

import (
	"fmt"
	"time"

	"github.com/erparts/reisen"
)

// Kind identifies which elementary stream a packet or frame belongs to.
type Kind uint8

const (
	KindVideo Kind = iota
	KindAudio
)

// Format wraps an opened container.
type Format struct {
	media *reisen.Media
	path  string
}

// OpenInput opens the container at path and prepares it for demuxing.
func OpenInput(path string) (*Format, error) {
	media, err := reisen.NewMedia(path)
	if err != nil {
		return nil, fmt.Errorf("decoder: open %q: %w", path, err)
	}
	return &Format{media: media, path: path}, nil
}

// StreamDescriptor describes one elementary stream selected for playback.
type StreamDescriptor struct {
	Kind          Kind
	Index         int
	Width, Height int // video only

	video *reisen.VideoStream
	audio *reisen.AudioStream
}

// FindStreams opens the underlying decode context and returns the
// descriptors of the first video and first audio stream, if present. Either
// may be nil.
func (f *Format) FindStreams() (video, audio *StreamDescriptor, err error) {
	if err := f.media.OpenDecode(); err != nil {
		return nil, nil, fmt.Errorf("decoder: open decode: %w", err)
	}

	videoStreams := f.media.VideoStreams()
	if len(videoStreams) > 0 {
		vs := videoStreams[0]
		if err := vs.Open(); err != nil {
			return nil, nil, fmt.Errorf("decoder: open video stream: %w", err)
		}
		video = &StreamDescriptor{Kind: KindVideo, Index: vs.Index(), Width: vs.Width(), Height: vs.Height(), video: vs}
	}

	audioStreams := f.media.AudioStreams()
	if len(audioStreams) > 0 {
		as := audioStreams[0]
		if err := as.Open(); err != nil {
			return nil, nil, fmt.Errorf("decoder: open audio stream: %w", err)
		}
		audio = &StreamDescriptor{Kind: KindAudio, Index: as.Index(), audio: as}
	}

	return video, audio, nil
}

// FrameRate returns the video stream's frame rate as num/den frames/second.
func (d *StreamDescriptor) FrameRate() (num, den int) {
	return d.video.FrameRate()
}

// SampleRate returns the audio stream's sample rate in Hz.
func (d *StreamDescriptor) SampleRate() int {
	return d.audio.SampleRate()
}

// Duration returns the stream's total duration.
func (d *StreamDescriptor) Duration() (time.Duration, error) {
	if d.video != nil {
		return d.video.Duration()
	}
	return d.audio.Duration()
}

// Packet identifies a just-read container packet: which elementary stream
// it belongs to. reisen keeps the packet's payload in internal, C-owned
// state rather than exposing it to the caller, so that's all there is to
// carry: the matching stream's Receive must be called immediately, before
// any other packet is read, to decode it.
type Packet struct {
	Kind        Kind
	StreamIndex int
}

// ReadPacket reads the next packet from the container. ok is false at
// end of file. The returned packet is only a routing label: the caller
// must call the owning StreamDescriptor's Receive right away, before
// reading another packet, or reisen's internal position will have moved on.
func (f *Format) ReadPacket() (pkt *Packet, ok bool, err error) {
	raw, found, err := f.media.ReadPacket()
	if err != nil {
		return nil, false, fmt.Errorf("decoder: read packet: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var kind Kind
	switch raw.Type() {
	case reisen.StreamVideo:
		kind = KindVideo
	case reisen.StreamAudio:
		kind = KindAudio
	default:
		return nil, true, nil // some other elementary stream type; caller ignores it
	}
	return &Packet{Kind: kind, StreamIndex: raw.StreamIndex()}, true, nil
}

// Seek requests a container-level seek for the given stream to the position
// nearest toUS microseconds, converted via the stream's own time base.
func (f *Format) Seek(d *StreamDescriptor, toUS int64) error {
	pos := time.Duration(toUS) * time.Microsecond
	var err error
	if d.video != nil {
		err = d.video.Rewind(pos)
	} else {
		err = d.audio.Rewind(pos)
	}
	if err != nil {
		return fmt.Errorf("decoder: seek: %w", err)
	}
	return nil
}

// VideoFrame is a decoded, RGBA-ready video frame.
type VideoFrame struct {
	PresentationUS int64
	Width, Height  int
	RGBA           []byte
}

// AudioFrame is a decoded, interleaved stereo S16 audio frame.
type AudioFrame struct {
	PresentationUS int64
	PCM            []byte // little-endian interleaved L/R int16 samples
}

// Receive decodes the frame produced by whichever packet the caller's
// ReadPacket call most recently returned for this stream. reisen couples
// packet consumption and frame production internally
// (ReadVideoFrame/ReadAudioFrame implicitly operate on whatever was last
// read for that stream index), so this must be called immediately after
// the matching ReadPacket, by the same goroutine, before any further packet
// is read; there is no way to hand the packet itself to another goroutine.
// A nil video and audio with a nil error means the packet carried no
// complete frame (caller should read the next packet and try again).
func (d *StreamDescriptor) Receive() (video *VideoFrame, audio *AudioFrame, err error) {
	switch d.Kind {
	case KindVideo:
		frame, found, err := d.video.ReadVideoFrame()
		if err != nil {
			return nil, nil, fmt.Errorf("decoder: decode video: %w", err)
		}
		if !found || frame == nil {
			return nil, nil, nil
		}
		off, err := frame.PresentationOffset()
		if err != nil {
			return nil, nil, fmt.Errorf("decoder: presentation offset: %w", err)
		}
		return &VideoFrame{
			PresentationUS: off.Microseconds(),
			Width:          d.Width,
			Height:         d.Height,
			RGBA:           frame.Data(),
		}, nil, nil

	case KindAudio:
		frame, found, err := d.audio.ReadAudioFrame()
		if err != nil {
			return nil, nil, fmt.Errorf("decoder: decode audio: %w", err)
		}
		if !found || frame == nil {
			return nil, nil, nil
		}
		off, err := frame.PresentationOffset()
		if err != nil {
			return nil, nil, fmt.Errorf("decoder: presentation offset: %w", err)
		}
		return nil, &AudioFrame{
			PresentationUS: off.Microseconds(),
			PCM:            ToStereoS16(frame),
		}, nil
	}
	return nil, nil, fmt.Errorf("decoder: unknown stream kind %v", d.Kind)
}

// Flush discards any internally buffered decoder state. Used when handling
// a seek: the decoder itself must persist across the seek, only its
// buffered frames are dropped.
//
// reisen doesn't expose a decoder-internal buffer flush distinct from a full
// stream close, so this is a no-op beyond the frame-queue clear the caller
// already does: any frame still buffered internally carries a pre-seek
// timestamp and is resynchronized away once Rewind's fresh packets land.
func (d *StreamDescriptor) Flush() error {
	return nil
}

// ToStereoS16 converts a decoded audio frame's samples to interleaved
// stereo S16, delegating to reisen's own sample format / channel layout
// conversion. reisen already produces S16 stereo frame data directly, so
// this is the identity function kept as an explicit seam in case a future
// stream needs resampling.
func ToStereoS16(frame *reisen.AudioFrame) []byte {
	return frame.Data()
}

// Close releases the stream's decode resources, without rewinding: callers
// that still want position 0 afterwards should Seek first.
func (d *StreamDescriptor) Close() error {
	if d.video != nil {
		return d.video.Close()
	}
	return d.audio.Close()
}

// Close releases the format/container resources.
func (f *Format) Close() error {
	f.media.CloseDecode()
	f.media.Close()
	return nil
}
