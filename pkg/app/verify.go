package app

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/smfparse/pkg/smf"
	"github.com/zurustar/smfparse/pkg/timing"
)

// VerifyTolerance は照合で許容する演奏時間の差
const VerifyTolerance = time.Millisecond

// VerifyResult は演奏時間の照合結果
type VerifyResult struct {
	Computed  time.Duration // 本パーサーとテンポマップから求めた演奏時間
	Reference time.Duration // meltysynthのMIDIリーダーが求めた演奏時間
}

// Diff は2つの演奏時間の差の絶対値を返す
func (r *VerifyResult) Diff() time.Duration {
	d := r.Computed - r.Reference
	if d < 0 {
		return -d
	}
	return d
}

// Match は差が許容範囲内かどうかを返す
func (r *VerifyResult) Match() bool {
	return r.Diff() <= VerifyTolerance
}

// Verify は同じバイト列をmeltysynthで読み込み、演奏時間を照合する
// meltysynthは全トラックのテンポを使うため、format 1ではtrack0以外のテンポで差が出ることがある
func Verify(data []byte, doc *smf.Document, source timing.Source) (*VerifyResult, error) {
	computed, err := timing.DocumentDuration(doc, source)
	if err != nil {
		return nil, err
	}

	midi, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reference reader rejected file: %w", err)
	}

	return &VerifyResult{
		Computed:  computed,
		Reference: midi.GetLength(),
	}, nil
}
