package system

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// TakeConsole puts the VT into graphics mode and hides the cursor for the
// framebuffer display. The returned func undoes both. Failures are logged
// only; the display still works on a console that keeps its cursor.
func TakeConsole(l Logger) (restore func()) {
	logStep(l, SetGraphicsMode(), "KD_GRAPHICS set", "KD_GRAPHICS failed")
	logStep(l, HideCursor(), "cursor hidden", "hide cursor failed")
	return func() {
		logStep(l, ShowCursor(), "cursor shown", "show cursor failed")
		logStep(l, RestoreTextMode(), "KD_TEXT set", "KD_TEXT failed")
	}
}

func logStep(l Logger, err error, ok, failed string) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%s: %v", failed, err)
		return
	}
	l.Infof("tty", "%s", ok)
}
