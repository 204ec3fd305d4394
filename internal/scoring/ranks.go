package scoring

import (
	"errors"
	"fmt"

	"fms/internal/structures"
)

// ErrUnknownRank marks requests naming a rank outside the configured set.
var ErrUnknownRank = errors.New("unknown rank")

// Rank names as they appear in the persisted document and the API.
const (
	RankMajor     = "major"
	RankLtColonel = "lt_colonel"
)

// Task names accepted by the score model. Each rank weighs a disjoint subset.
const (
	TaskPermissionGrant = "permission_grant"
	TaskRankChange      = "rank_change"
	TaskTeamChange      = "team_change"
	TaskJobRecruit      = "job_recruit"
	TaskIngameExam      = "ingame_exam"
	TaskCertification   = "certification"
	TaskRoleGrant       = "role_grant"
	TaskInspection      = "inspection"
	TaskServerRole      = "server_role"
	TaskCoHost          = "cohost"
	TaskFeedback        = "feedback"
)

// RankConfig describes everything rank-specific the engine needs: the
// minimum-activity gate and the task weights feeding the two score-model
// outputs. A single generic scorer is parameterized by this record instead
// of branching per rank.
type RankConfig struct {
	Name           string
	RoleID         string
	MinimumUnits   float64
	PrimaryWeights map[string]float64
	ExtraWeights   map[string]float64
}

// RankSet holds the configured ranks in a stable order.
type RankSet struct {
	ranks []RankConfig
}

// NewRankSet binds the two built-in rank catalogues to the platform role ids
// from config.
func NewRankSet(conf *structures.Config) *RankSet {
	return &RankSet{ranks: []RankConfig{
		{
			Name:         RankMajor,
			RoleID:       conf.Ranks.MajorRoleID,
			MinimumUnits: 3,
			PrimaryWeights: map[string]float64{
				TaskPermissionGrant: 1,
				TaskRankChange:      1,
				TaskTeamChange:      1,
			},
			ExtraWeights: map[string]float64{
				TaskJobRecruit: 2,
				TaskIngameExam: 1,
			},
		},
		{
			Name:         RankLtColonel,
			RoleID:       conf.Ranks.LtColonelRoleID,
			MinimumUnits: 4,
			PrimaryWeights: map[string]float64{
				TaskCertification: 1.5,
				TaskRoleGrant:     1,
				TaskInspection:    2,
				TaskServerRole:    0.5,
			},
			ExtraWeights: map[string]float64{
				TaskIngameExam: 1,
				TaskCoHost:     1,
				TaskFeedback:   2,
			},
		},
	}}
}

// All returns the ranks in declaration order.
func (rs *RankSet) All() []RankConfig {
	return rs.ranks
}

// Names returns the rank names in declaration order.
func (rs *RankSet) Names() []string {
	names := make([]string, len(rs.ranks))
	for i, r := range rs.ranks {
		names[i] = r.Name
	}
	return names
}

// ByName resolves a rank name to its config.
func (rs *RankSet) ByName(name string) (RankConfig, error) {
	for _, r := range rs.ranks {
		if r.Name == name {
			return r, nil
		}
	}
	return RankConfig{}, fmt.Errorf("%w %q", ErrUnknownRank, name)
}

// PrimaryUnits converts raw task counts into the rank's admin units: the
// weighted sum over the primary task catalogue. Negative counts are clamped
// to zero and unknown task names are ignored.
func PrimaryUnits(cfg RankConfig, counts map[string]int) float64 {
	return weightedSum(cfg.PrimaryWeights, counts)
}

// ExtraPoints converts raw task counts into the rank's supplementary points.
func ExtraPoints(cfg RankConfig, counts map[string]int) float64 {
	return weightedSum(cfg.ExtraWeights, counts)
}

func weightedSum(weights map[string]float64, counts map[string]int) float64 {
	var sum float64
	for task, w := range weights {
		n := counts[task]
		if n < 0 {
			n = 0
		}
		sum += w * float64(n)
	}
	return sum
}
