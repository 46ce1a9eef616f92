package model

import "time"

// TravelStory は旅行記エントリを表す。
// UserIDは作成時に確定し、以降変更されない。
// すべての読み取り・更新・削除はIDとUserIDの両方で絞り込む（所有者スコープ）。
type TravelStory struct {
	ID               string
	UserID           string
	Title            string
	Story            string
	VisitedLocations []string
	ImageURL         string
	VisitedDate      time.Time
	IsFavourite      bool
	CreatedAt        time.Time
}
