// Package mpeg decodes local video files to RGBA frames with FFmpeg.
package mpeg

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale

#include <stdlib.h>
#include <string.h>
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libavutil/imgutils.h>
#include <libswscale/swscale.h>
#include <libavutil/log.h>

typedef struct {
    AVFormatContext *formatCtx;
    AVCodecContext  *codecCtx;
    AVFrame         *frame;
    AVFrame         *frameRGBA;
    struct SwsContext *swsCtx;
    int             videoStream;
    uint8_t         *bufferRGBA;
    double          pts;
} Decoder;

static int open_codec(Decoder *d, const AVCodec *codec, AVCodecParameters *par) {
    AVCodecContext *ctx = avcodec_alloc_context3(codec);
    if (!ctx) {
        return -1;
    }
    avcodec_parameters_to_context(ctx, par);
    ctx->thread_type = FF_THREAD_FRAME;
    ctx->thread_count = 0;
    if (avcodec_open2(ctx, codec, NULL) < 0) {
        avcodec_free_context(&ctx);
        return -1;
    }
    d->codecCtx = ctx;
    return 0;
}

// VIDEO_DECODER names a preferred decoder; it is used only when it matches
// the stream's codec. Otherwise FFmpeg's default decoder is opened.
int init_decoder(const char *filename, Decoder *d) {
    av_log_set_level(AV_LOG_ERROR);
    d->videoStream = -1;
    d->pts = 0;

    if (avformat_open_input(&d->formatCtx, filename, NULL, NULL) != 0) {
        return -1;
    }
    if (avformat_find_stream_info(d->formatCtx, NULL) < 0) {
        return -2;
    }

    int idx = av_find_best_stream(d->formatCtx, AVMEDIA_TYPE_VIDEO, -1, -1, NULL, 0);
    if (idx < 0) {
        return -3;
    }
    d->videoStream = idx;
    AVCodecParameters *par = d->formatCtx->streams[idx]->codecpar;

    int opened = 0;
    const char *preferred = getenv("VIDEO_DECODER");
    if (preferred && preferred[0] != '\0') {
        const AVCodec *c = avcodec_find_decoder_by_name(preferred);
        if (c && c->id == par->codec_id && open_codec(d, c, par) == 0) {
            opened = 1;
        }
    }
    if (!opened) {
        const AVCodec *fallback = avcodec_find_decoder(par->codec_id);
        if (!fallback || open_codec(d, fallback, par) != 0) {
            return -4;
        }
    }

    d->frame = av_frame_alloc();
    d->frameRGBA = av_frame_alloc();

    int width  = d->codecCtx->width;
    int height = d->codecCtx->height;
    int numBytes = av_image_get_buffer_size(AV_PIX_FMT_RGBA, width, height, 1);
    d->bufferRGBA = (uint8_t *)av_malloc(numBytes * sizeof(uint8_t));
    av_image_fill_arrays(d->frameRGBA->data, d->frameRGBA->linesize, d->bufferRGBA, AV_PIX_FMT_RGBA, width, height, 1);

    d->swsCtx = sws_getContext(width, height, d->codecCtx->pix_fmt,
                               width, height, AV_PIX_FMT_RGBA,
                               SWS_BILINEAR, NULL, NULL, NULL);
    return 0;
}

// Returns 1 on success, 0 on EOF, negative on error.
int decode_frame(Decoder *d, uint8_t **rgba_data) {
    AVPacket packet;
    int ret;

    while (av_read_frame(d->formatCtx, &packet) >= 0) {
        if (packet.stream_index != d->videoStream) {
            av_packet_unref(&packet);
            continue;
        }
        ret = avcodec_send_packet(d->codecCtx, &packet);
        av_packet_unref(&packet);
        if (ret < 0) {
            return -1;
        }
        ret = avcodec_receive_frame(d->codecCtx, d->frame);
        if (ret == AVERROR(EAGAIN) || ret == AVERROR_EOF) {
            continue;
        } else if (ret < 0) {
            return -2;
        }

        sws_scale(d->swsCtx,
                  (const uint8_t * const*)d->frame->data,
                  d->frame->linesize,
                  0,
                  d->codecCtx->height,
                  d->frameRGBA->data,
                  d->frameRGBA->linesize);

        AVStream *st = d->formatCtx->streams[d->videoStream];
        if (d->frame->best_effort_timestamp != AV_NOPTS_VALUE) {
            d->pts = d->frame->best_effort_timestamp * av_q2d(st->time_base);
        }
        *rgba_data = d->frameRGBA->data[0];
        return 1;
    }
    return 0;
}

int seek_decoder(Decoder *d, double seconds) {
    AVStream *st = d->formatCtx->streams[d->videoStream];
    int64_t ts = (int64_t)(seconds / av_q2d(st->time_base));
    if (av_seek_frame(d->formatCtx, d->videoStream, ts, AVSEEK_FLAG_BACKWARD) < 0) {
        return -1;
    }
    avcodec_flush_buffers(d->codecCtx);
    d->pts = seconds;
    return 0;
}

double decoder_duration(Decoder *d) {
    if (d->formatCtx->duration == AV_NOPTS_VALUE) {
        return 0;
    }
    return (double)d->formatCtx->duration / AV_TIME_BASE;
}

double decoder_fps(Decoder *d) {
    AVStream *st = d->formatCtx->streams[d->videoStream];
    AVRational r = av_guess_frame_rate(d->formatCtx, st, NULL);
    if (r.den == 0) {
        return 0;
    }
    return av_q2d(r);
}

void close_decoder(Decoder *d) {
    if (!d) return;
    sws_freeContext(d->swsCtx);
    av_free(d->bufferRGBA);
    av_frame_free(&d->frameRGBA);
    av_frame_free(&d->frame);
    avcodec_free_context(&d->codecCtx);
    if (d->formatCtx) {
        avformat_close_input(&d->formatCtx);
    }
}
*/
import "C"

import (
	"fmt"
	"io"
	"sync"
	"unsafe"
)

const defaultFPS = 30

// Decoder is an opened video file. It is used from a single goroutine.
type Decoder struct {
	cdec      C.Decoder
	width     int
	height    int
	fps       float64
	duration  float64
	closeOnce sync.Once
}

// Open prepares path for decoding.
func Open(path string) (*Decoder, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	d := &Decoder{}
	if ret := C.init_decoder(cPath, &d.cdec); ret != 0 {
		C.close_decoder(&d.cdec)
		return nil, fmt.Errorf("open %s: init_decoder failed (code=%d)", path, int(ret))
	}

	d.width = int(d.cdec.codecCtx.width)
	d.height = int(d.cdec.codecCtx.height)
	d.duration = float64(C.decoder_duration(&d.cdec))
	d.fps = float64(C.decoder_fps(&d.cdec))
	if d.fps <= 0 {
		d.fps = defaultFPS
	}
	return d, nil
}

// Next decodes one frame and returns a copy of its RGBA pixels with its
// presentation time in seconds. It returns io.EOF at the end of the file.
func (d *Decoder) Next() ([]byte, float64, error) {
	var data *C.uint8_t
	ret := C.decode_frame(&d.cdec, &data)
	switch {
	case ret == 0:
		return nil, 0, io.EOF
	case ret < 0:
		return nil, 0, fmt.Errorf("decode error (code=%d)", int(ret))
	}
	n := d.width * d.height * 4
	return C.GoBytes(unsafe.Pointer(data), C.int(n)), float64(d.cdec.pts), nil
}

// Seek moves to the keyframe at or before seconds.
func (d *Decoder) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	if C.seek_decoder(&d.cdec, C.double(seconds)) != 0 {
		return fmt.Errorf("seek to %.2fs failed", seconds)
	}
	return nil
}

func (d *Decoder) Size() (int, int) {
	return d.width, d.height
}

func (d *Decoder) FPS() float64 {
	return d.fps
}

// Duration is the container duration in seconds, 0 when unknown.
func (d *Decoder) Duration() float64 {
	return d.duration
}

func (d *Decoder) Close() error {
	d.closeOnce.Do(func() {
		C.close_decoder(&d.cdec)
	})
	return nil
}
