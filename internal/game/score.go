package game

// scoreLadder hands out round points in arrival order: the first correct
// answer is worth 1000 and each following one is worth floor(prev*10/11),
// never dropping below 1. Wrong and duplicate answers do not advance the
// ladder. A fresh ladder is built for every round.
type scoreLadder struct {
	points int
}

func newScoreLadder() *scoreLadder {
	return &scoreLadder{points: 1000}
}

// Take returns the current award and steps the ladder down.
func (l *scoreLadder) Take() int {
	p := l.points
	l.points = l.points * 10 / 11
	if l.points < 1 {
		l.points = 1
	}
	return p
}
