package types

// Read models served over HTTP. Status fields carry the lowercase status
// names: "pending" | "active" | "finished".

type Shot struct {
	ShotNumber int  `json:"shot_number"`
	Score      int  `json:"score"`
	IsX        bool `json:"is_x"`
}

// DistanceResult is one participant's standing in one distance. TotalScore is
// null for pending distances; Shots is empty unless the distance is active.
type DistanceResult struct {
	DistanceID uint   `json:"distance_id"`
	Title      string `json:"title"`
	ShotsCount int    `json:"shots_count"`
	Status     string `json:"status"`
	TotalScore *int   `json:"total_score"`
	XCount     int    `json:"x_count"`
	Shots      []Shot `json:"shots"`
}

// Series is a run of three consecutive shot numbers.
type Series struct {
	Number  int     `json:"number"`
	Shots   []Shot  `json:"shots"`
	Sum     int     `json:"sum"`
	Average float64 `json:"average"`
}

type SheetRow struct {
	ParticipantID uint     `json:"participant_id"`
	Name          string   `json:"name"`
	LaneShift     string   `json:"lane_shift"`
	TotalScore    int      `json:"total_score"`
	XCount        int      `json:"x_count"`
	TenCount      int      `json:"ten_count"`
	Series        []Series `json:"series"`
}

// Sheet is the shot-by-shot view of one distance.
type Sheet struct {
	DistanceID uint       `json:"distance_id"`
	Title      string     `json:"title"`
	ShotsCount int        `json:"shots_count"`
	Status     string     `json:"status"`
	Rows       []SheetRow `json:"rows"`
}

type DistanceScore struct {
	DistanceID uint   `json:"distance_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Score      *int   `json:"score"`
	XCount     int    `json:"x_count"`
}

type LeaderboardEntry struct {
	ParticipantID  uint            `json:"participant_id"`
	Name           string          `json:"name"`
	LaneShift      string          `json:"lane_shift"`
	PersonalNumber *string         `json:"personal_number"`
	TotalScore     int             `json:"total_score"`
	XCount         int             `json:"x_count"`
	TenCount       int             `json:"ten_count"`
	MissCount      int             `json:"m_count"`
	Shots          int             `json:"shots"`
	DistanceScores []DistanceScore `json:"distance_scores"`
}

type LeaderboardGroup struct {
	Key          string             `json:"key"`
	AgeCategory  string             `json:"age_category"`
	GroupType    string             `json:"group_type"`
	Gender       string             `json:"gender"`
	ShootingType string             `json:"shooting_type"`
	Entries      []LeaderboardEntry `json:"entries"`
}

type Leaderboard struct {
	Groups []LeaderboardGroup `json:"groups"`
}
