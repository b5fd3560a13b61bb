package media

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/annel0/touchblock/internal/logging"
)

const (
	// SampleRate частота дискретизации всех клипов
	SampleRate = beep.SampleRate(44100)
)

var clipFormat = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// ToneGenerator генерирует синус с затухающей огибающей
type ToneGenerator struct {
	sr    beep.SampleRate
	freq  float64
	decay float64
	pos   int
}

// NewToneGenerator создаёт генератор тона
func NewToneGenerator(sr beep.SampleRate, freq, decay float64) *ToneGenerator {
	return &ToneGenerator{sr: sr, freq: freq, decay: decay}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t) * math.Exp(-g.decay*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// Library набор предзаписанных клипов. Клип хранится в буфере,
// каждое воспроизведение читает его с начала.
type Library struct {
	mu    sync.RWMutex
	clips map[string]*beep.Buffer
}

// NewLibrary создаёт пустую библиотеку
func NewLibrary() *Library {
	return &Library{clips: make(map[string]*beep.Buffer)}
}

// DefaultLibrary библиотека со звуками блоков по умолчанию
func DefaultLibrary() *Library {
	l := NewLibrary()
	l.AddTone("coin", 1320, 150*time.Millisecond)
	l.AddTone("thud", 90, 120*time.Millisecond)
	l.AddTone("crash", 140, 400*time.Millisecond)
	l.AddTone("powerup", 880, 300*time.Millisecond)
	l.AddTone("ding", 1760, 200*time.Millisecond)
	return l
}

// Add записывает поток в буфер клипа
func (l *Library) Add(name string, s beep.Streamer) {
	buf := beep.NewBuffer(clipFormat)
	buf.Append(s)

	l.mu.Lock()
	l.clips[name] = buf
	l.mu.Unlock()
}

// AddTone добавляет синтезированный тон заданной длительности
func (l *Library) AddTone(name string, freq float64, d time.Duration) {
	l.Add(name, beep.Take(SampleRate.N(d), NewToneGenerator(SampleRate, freq, 8)))
}

// Streamer возвращает новый поток клипа с нулевой позиции
func (l *Library) Streamer(name string) (beep.StreamSeeker, error) {
	l.mu.RLock()
	buf, ok := l.clips[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("звук %q не найден", name)
	}
	return buf.Streamer(0, buf.Len()), nil
}

// Len возвращает длину клипа в сэмплах (0 для неизвестного)
func (l *Library) Len(name string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if buf, ok := l.clips[name]; ok {
		return buf.Len()
	}
	return 0
}

// Names возвращает отсортированные имена клипов
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.clips))
	for name := range l.clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source источник звука актора. Каждый PlayOneShot добавляет поток в микшер,
// уже звучащие клипы не прерываются.
type Source struct {
	mu     sync.Mutex
	lib    *Library
	mixer  *beep.Mixer
	output *Output
	plays  []string
}

// NewSource создаёт источник с собственным микшером
func NewSource(lib *Library) *Source {
	return &Source{lib: lib, mixer: &beep.Mixer{}}
}

// PlayOneShot проигрывает клип поверх текущих
func (s *Source) PlayOneShot(clip string) {
	streamer, err := s.lib.Streamer(clip)
	if err != nil {
		logging.GetComponentLogger(logging.ComponentMedia).Warn("PlayOneShot: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = append(s.plays, clip)

	release := s.output.lock()
	s.target().Add(streamer)
	release()
}

// target микшер, в который пишет источник: общий после подключения к устройству
func (s *Source) target() *beep.Mixer {
	if s.output != nil {
		return s.output.mixer
	}
	return s.mixer
}

// Active возвращает число одновременно звучащих клипов
func (s *Source) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.output.lock()()
	return s.target().Len()
}

// Played возвращает историю запущенных клипов
func (s *Source) Played() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.plays...)
}

// Advance прокручивает собственный микшер на dt, пока источник не подключён к устройству.
// Доигравшие клипы покидают микшер. Подключённый источник прокручивает устройство.
func (s *Source) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.output != nil {
		return
	}

	var buf [512][2]float64
	for n := SampleRate.N(dt); n > 0 && s.mixer.Len() > 0; n -= len(buf) {
		s.mixer.Stream(buf[:min(n, len(buf))])
	}
}

// Output вывод на звуковое устройство. Подключённые источники пишут в общий микшер.
type Output struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewOutput создаёт неинициализированный вывод
func NewOutput() *Output {
	return &Output{mixer: &beep.Mixer{}}
}

// Initialize открывает устройство с заданным буфером
func (o *Output) Initialize(buffer time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(buffer)); err != nil {
		return fmt.Errorf("инициализация звука: %w", err)
	}
	speaker.Play(o.mixer)
	o.initialized = true
	return nil
}

// Connect подключает источник к устройству
func (o *Output) Connect(s *Source) {
	s.mu.Lock()
	s.output = o
	s.mu.Unlock()
}

// Cleanup отключает все источники
func (o *Output) Cleanup() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return
	}
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	o.initialized = false
}

// lock захватывает speaker, если устройство открыто, и возвращает парный release
func (o *Output) lock() (release func()) {
	if o == nil {
		return func() {}
	}
	o.mu.Lock()
	active := o.initialized
	o.mu.Unlock()
	if !active {
		return func() {}
	}
	speaker.Lock()
	return speaker.Unlock
}
