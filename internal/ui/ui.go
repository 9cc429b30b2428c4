package ui

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"dotmatrix/internal/emulator"
	"dotmatrix/internal/ppu"
)

// UI is the SDL2 front end: a window with a streaming texture the
// emulator's framebuffer is copied into once per frame.
type UI struct {
	window     *sdl.Window
	renderer   *sdl.Renderer
	texture    *sdl.Texture
	emulator   *emulator.Emulator
	running    bool
	scale      int
	fullscreen bool
	title      string
}

// New creates the window and renderer. Scale is the integer pixel zoom.
func New(emu *emulator.Emulator, title string, scale int) (*UI, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %w", err)
	}

	// Nearest-neighbor scaling keeps the pixels crisp.
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(ppu.ScreenWidth*scale),
		int32(ppu.ScreenHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		ppu.ScreenWidth,
		ppu.ScreenHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create texture: %w", err)
	}

	return &UI{
		window:   window,
		renderer: renderer,
		texture:  texture,
		emulator: emu,
		running:  true,
		scale:    scale,
		title:    title,
	}, nil
}

// Run is the host main loop: poll events, run a frame, present it.
// It blocks until the window closes or the emulator fails.
func (u *UI) Run() error {
	defer u.Cleanup()

	u.emulator.Start()

	for u.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if err := u.handleEvent(event); err != nil {
				return err
			}
		}

		if err := u.emulator.RunFrame(); err != nil {
			return fmt.Errorf("emulation error: %w", err)
		}

		if err := u.present(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		u.window.SetTitle(fmt.Sprintf("%s  %.1f fps", u.title, u.emulator.FPS))
	}

	return nil
}

// handleEvent handles one SDL event.
func (u *UI) handleEvent(event sdl.Event) error {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		u.running = false

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			u.handleKeyDown(e.Keysym.Sym)
		}
	}
	return nil
}

// handleKeyDown handles the host control keys.
func (u *UI) handleKeyDown(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE:
		u.running = false
	case sdl.K_SPACE:
		if u.emulator.Paused {
			u.emulator.Resume()
		} else {
			u.emulator.Pause()
		}
	case sdl.K_r:
		if sdl.GetModState()&sdl.KMOD_CTRL != 0 {
			if err := u.emulator.Reset(); err == nil {
				u.emulator.Start()
			}
		}
	case sdl.K_f:
		if sdl.GetModState()&sdl.KMOD_ALT != 0 {
			u.toggleFullscreen()
		}
	}
}

// present streams the framebuffer into the texture and flips it.
func (u *UI) present() error {
	buffer := u.emulator.Framebuffer
	if len(buffer) != ppu.ScreenWidth*ppu.ScreenHeight {
		return fmt.Errorf("framebuffer size mismatch: %d", len(buffer))
	}

	pitch := ppu.ScreenWidth * 4
	if err := u.texture.Update(nil, unsafe.Pointer(&buffer[0]), pitch); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	u.renderer.Clear()
	if err := u.renderer.Copy(u.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy texture: %w", err)
	}
	u.renderer.Present()
	return nil
}

// toggleFullscreen switches between windowed and desktop fullscreen.
func (u *UI) toggleFullscreen() {
	if u.fullscreen {
		u.window.SetFullscreen(0)
	} else {
		u.window.SetFullscreen(sdl.WINDOW_FULLSCREEN_DESKTOP)
	}
	u.fullscreen = !u.fullscreen
}

// Cleanup releases all SDL resources.
func (u *UI) Cleanup() {
	if u.texture != nil {
		u.texture.Destroy()
	}
	if u.renderer != nil {
		u.renderer.Destroy()
	}
	if u.window != nil {
		u.window.Destroy()
	}
	sdl.Quit()
}
