package catalog

import "github.com/nantokaworks/wheel-overlay/internal/types"

// regulerPrizes / exclusivePrizes は静的な賞品テーブル。
// 並び順はホイール上の角度位置を決めるため変更しないこと
// （エントリiはセグメント [i*360/n, (i+1)*360/n) を占める）。
var regulerPrizes = []types.Prize{
	{ID: 0, Label: "2 Btg Rokok", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 1, Label: "1 Btg Rokok", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 2, Label: "1 Saset Kopi", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 3, Label: "2 Btg Rokok", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 4, Label: "2 Saset kopi", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 5, Label: "1 Btg Rokok", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 6, Label: "1 Saset Kopi", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 7, Label: "2 Saset kopi", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 8, Label: "Snack", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 9, Label: "1 Btg Rokok", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 10, Label: "1 Saset Kopi", Color: "#1a1a1a", TextColor: "#D4AF37"},
	{ID: 11, Label: "Snack", Color: "#302B63", TextColor: "#FFFFFF"},
}

var exclusivePrizes = []types.Prize{
	{ID: 0, Label: "40B", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 1, Label: "60B", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 2, Label: "100B", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 3, Label: "200B", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 4, Label: "1 Bks Rokok", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 5, Label: "10 Saset Kopi", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 6, Label: "2 Minuman Dgn", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 7, Label: "40B", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 8, Label: "60B", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 9, Label: "100B", Color: "#302B63", TextColor: "#FFFFFF"},
	{ID: 10, Label: "40B", Color: "#1a1a1a", TextColor: "#E0A7FF"},
	{ID: 11, Label: "60B", Color: "#302B63", TextColor: "#FFFFFF"},
}

// namesList は入場画面で選択できる識別子の一覧。
var namesList = []types.UserProfile{
	{Name: "G109", DisplayName: "G109"},
	{Name: "G71", DisplayName: "G71"},
	{Name: "G17", DisplayName: "G17"},
	{Name: "G70", DisplayName: "G70"},
	{Name: "M07", DisplayName: "M07"},
	{Name: "G31", DisplayName: "G31"},
}

// Prizes はモードに対応する賞品カタログを返す。返り値は読み取り専用として扱うこと。
func Prizes(mode types.SpinMode) []types.Prize {
	if mode == types.ModeExclusive {
		return exclusivePrizes
	}
	return regulerPrizes
}

// SegmentAngle は1セグメントの角度（度）を返す。
func SegmentAngle(prizeCount int) float64 {
	return 360.0 / float64(prizeCount)
}

// Names returns the selectable identity list for the entry screen.
func Names() []types.UserProfile {
	return namesList
}
