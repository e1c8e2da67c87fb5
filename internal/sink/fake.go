package sink

// Write records one hardware write issued to a fake.
type Write struct {
	Index int   // always 0 for single-output fakes
	Level uint8 // meaningful when PWM is true
	PWM   bool
	On    bool // meaningful when PWM is false
}

// Fake is a test double recording every write issued to a single output.
type Fake struct {
	// Writes contains all writes in issue order.
	Writes []Write

	// Began tracks if Begin was called.
	Began bool

	// Err, if set, is returned by every write.
	Err error

	// OnColor and OffColor record the last colors set.
	OnColor  uint32
	OffColor uint32

	last bool
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Begin marks the fake as initialized.
func (f *Fake) Begin() error {
	f.Began = true
	return f.Err
}

// DigitalWrite records a binary write.
func (f *Fake) DigitalWrite(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes = append(f.Writes, Write{On: on})
	f.last = on
	return nil
}

// PWMWrite records a brightness write.
func (f *Fake) PWMWrite(level uint8) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes = append(f.Writes, Write{PWM: true, Level: level})
	f.last = level >= PWMThreshold
	return nil
}

// SetOnColor records the on color.
func (f *Fake) SetOnColor(color uint32) { f.OnColor = color }

// SetOffColor records the off color.
func (f *Fake) SetOffColor(color uint32) { f.OffColor = color }

// DigitalRead returns the level implied by the last write.
func (f *Fake) DigitalRead() bool { return f.last }

// On reports the level implied by the last write (false if none).
func (f *Fake) On() bool { return f.last }

// Levels returns the sequence of PWM levels written.
func (f *Fake) Levels() []uint8 {
	var out []uint8
	for _, w := range f.Writes {
		if w.PWM {
			out = append(out, w.Level)
		}
	}
	return out
}

// Reset clears recorded writes.
func (f *Fake) Reset() {
	f.Writes = nil
	f.Began = false
	f.Err = nil
	f.last = false
}

// FakeGroup is a test double recording writes to indexed outputs.
type FakeGroup struct {
	// Size is the number of outputs the group pretends to have.
	Size int

	// Writes contains all writes in issue order.
	Writes []Write

	// Began tracks if Begin was called.
	Began bool

	// Err, if set, is returned by every write.
	Err error

	last map[int]bool
}

// NewFakeGroup creates a FakeGroup with the given number of outputs.
func NewFakeGroup(size int) *FakeGroup {
	return &FakeGroup{Size: size, last: make(map[int]bool)}
}

// Begin marks the group as initialized.
func (g *FakeGroup) Begin() error {
	g.Began = true
	return g.Err
}

// DigitalWrite records a binary write to one output.
func (g *FakeGroup) DigitalWrite(index int, on bool) error {
	if g.Err != nil {
		return g.Err
	}
	g.Writes = append(g.Writes, Write{Index: index, On: on})
	g.last[index] = on
	return nil
}

// PWMWrite records a brightness write to one output.
func (g *FakeGroup) PWMWrite(index int, level uint8) error {
	if g.Err != nil {
		return g.Err
	}
	g.Writes = append(g.Writes, Write{Index: index, PWM: true, Level: level})
	g.last[index] = level >= PWMThreshold
	return nil
}

// On reports the level implied by the last write to index (false if none).
func (g *FakeGroup) On(index int) bool { return g.last[index] }

// Lit returns the indices currently on, in ascending order.
func (g *FakeGroup) Lit() []int {
	var out []int
	for i := 0; i < g.Size; i++ {
		if g.last[i] {
			out = append(out, i)
		}
	}
	return out
}

// Reset clears recorded writes.
func (g *FakeGroup) Reset() {
	g.Writes = nil
	g.Began = false
	g.Err = nil
	g.last = make(map[int]bool)
}
