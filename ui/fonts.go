package ui

import (
	"fmt"
	"os"

	"github.com/veandco/go-sdl2/ttf"
)

// Fonts manages the TrueType fonts the player draws with
type Fonts struct {
	Danmaku *ttf.Font // comment text, size from settings
	Small   *ttf.Font // 14px for the status line
}

var fontPaths = []string{
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/Helvetica.ttc",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
}

func openFirst(paths []string, size int) (*ttf.Font, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		font, err := ttf.OpenFont(path, size)
		if err == nil {
			return font, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable font at size %d: %v", size, lastErr)
}

// LoadFonts loads DANMAKU_FONT when set, then system fonts with fallbacks
// for different platforms.
func LoadFonts(danmakuSize int) (*Fonts, error) {
	if err := ttf.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize TTF: %v", err)
	}

	paths := append([]string{os.Getenv("DANMAKU_FONT")}, fontPaths...)

	fonts := &Fonts{}
	var err error
	fonts.Danmaku, err = openFirst(paths, danmakuSize)
	if err != nil {
		return nil, err
	}
	fonts.Small, err = openFirst(paths, 14)
	if err != nil {
		fonts.Danmaku.Close()
		return nil, err
	}
	return fonts, nil
}

// Close cleans up font resources
func (f *Fonts) Close() {
	if f.Danmaku != nil {
		f.Danmaku.Close()
	}
	if f.Small != nil {
		f.Small.Close()
	}
	ttf.Quit()
}
