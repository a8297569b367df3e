package aggregate

import "time"

// Clock は現在時刻の取得を抽象化する。
// 「今月」の件数計算が壁時計に依存するため、テストでは固定時刻を注入する。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock はOSの壁時計をそのまま返すClockを返す。
func SystemClock() Clock { return systemClock{} }

// FixedClock は常に同じ時刻を返すClock。テストおよび再現可能なレポート生成用。
type FixedClock struct {
	Time time.Time
}

// Now は固定された時刻を返す。
func (c FixedClock) Now() time.Time { return c.Time }
