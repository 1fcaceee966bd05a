package provider

import (
	"context"
	"fmt"
	"strings"

	"insightvector/internal/insight"
)

// Synthetic is the last-resort provider. It never fails and weaves the
// problem text into a fixed decomposition so the explorer stays usable
// without network access.
type Synthetic struct{}

// NewSynthetic returns the synthetic provider.
func NewSynthetic() *Synthetic { return &Synthetic{} }

// Name returns "synthetic".
func (*Synthetic) Name() string { return "synthetic" }

type syntheticVector struct {
	keyword     string
	weight      float64
	description string // {p} is replaced with the problem
}

var syntheticVectors = []syntheticVector{
	{"系统冗余 (Systemic Redundancy)", 0.85, "在针对“{p}”的分析中，识别出的核心维度是系统内部的信息冗余。这导致了决策链路的延长与执行效能的非线性下降。"},
	{"路径依赖 (Path Dependency)", 0.75, "面对“{p}”时，个体或组织倾向于套用过往的认知范式，这种心理上的安全边际反而成为了阻碍创新的主要壁垒。"},
	{"博弈均衡 (Game Equilibrium)", 0.8, "当前状态本质上是一种低效率的博弈均衡，各方为了局部利益最大化而牺牲了整体的突破可能。"},
	{"信息熵 (Information Entropy)", 0.9, "“{p}”背后的不确定性源于环境信息的极度混乱，需要通过引入负熵流（高质量决策）来重建系统秩序。"},
	{"涌现机制 (Emergence Mechanism)", 0.7, "复杂交互产生的宏观现象无法通过单一节点解释，需要从底层因果律出发理解其动态涌现过程。"},
	{"控制反馈 (Control Feedback)", 0.65, "系统当前的反馈回路存在相位延迟，导致对“{p}”的响应往往滞后于现实变化。"},
}

// FetchInsight builds the synthetic result for problem. scope is ignored.
func (*Synthetic) FetchInsight(ctx context.Context, problem, _ string) (*insight.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fill := func(s string) string { return strings.ReplaceAll(s, "{p}", problem) }

	r := &insight.Result{
		FirstPrinciple: fill("“{p}”的本质是认知边界与现实复杂度的错位"),
		OldPattern:     fill("一个在静态坐标系中寻找“{p}”答案的刻舟求剑者"),
		NewMetaphor:    fill("一个在“{p}”的动态流体中利用涡流前进的冲浪手"),
	}
	for i, v := range syntheticVectors {
		r.Vectors = append(r.Vectors, insight.Vector{
			ID:          fmt.Sprintf("v%d", i+1),
			Keyword:     v.keyword,
			Weight:      v.weight,
			Description: fill(v.description),
		})
	}
	return r, nil
}
