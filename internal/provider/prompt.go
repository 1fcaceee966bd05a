package provider

import (
	"fmt"

	"insightvector/internal/insight"

	"google.golang.org/genai"
)

const promptTemplate = `你是一位世界级的认知科学家、跨学科系统架构师与第一性原理哲学家。
你的任务是利用“高维认知思维方法论”对用户的问题进行极致深度的解构。

用户问题: "%s" %s

解构准则：
1. **维度向量 (Vectors)**: 你必须提取 **至少 6 个且不超过 8 个** 核心特征向量。
    * 不要直接回答问题。首先将用户的问题拆解为关键维度的“特征向量”。
    * 寻找定义该问题的核心关键词（坐标），拆解的维度向量不要专业术语，要用户一眼看懂理解。
   - **格式要求**：keyword 必须采用 "中文名 (English Name)" 的形式。例如："结构性熵增 (Structural Entropy)"。
   - 描述 (description) 必须专业且全面，揭示现象背后的隐性逻辑，字数在 60-100 字。
2. **第一性原理 (First Principle)**: 归纳出该现象背后的底层真理。
3. **认知重构 (Metaphor)**:
   - oldPattern: 描述低维下的局限性（停止像...）。
   - newMetaphor: 描述高维下的进化行为（开始像...）。
4.  **降维隐喻 (Descent via Metaphor)**
    * 这是最关键的一步。将高维的洞察，用用户熟悉的领域（如生活场景、基础物理、经典商业案例）进行“降维打击”式的解释。
    * 确保解释既简单（Simple）又具有泛化能力（Generalizable）。

请严格以 JSON 格式返回。所有解释文字使用简体中文。`

// BuildPrompt renders the decomposition prompt. A non-empty scope turns
// it into a vertical deep dive on that sub-dimension.
func BuildPrompt(problem, scope string) string {
	suffix := ""
	if scope != "" {
		suffix = fmt.Sprintf("\n[Context: Focus your analysis on the sub-dimension \"%s\". Perform a vertical deep dive.]", scope)
	}
	return fmt.Sprintf(promptTemplate, problem, suffix)
}

// ResponseSchema is the structured output contract sent with every request.
func ResponseSchema() *genai.Schema {
	minItems, maxItems := int64(insight.MinVectors), int64(insight.MaxVectors)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"vectors": {
				Type:     genai.TypeArray,
				MinItems: &minItems,
				MaxItems: &maxItems,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"keyword":     {Type: genai.TypeString, Description: "格式：中文名 (English Name)"},
						"weight":      {Type: genai.TypeNumber},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"id", "keyword", "weight", "description"},
				},
			},
			"firstPrinciple": {Type: genai.TypeString},
			"oldPattern":     {Type: genai.TypeString},
			"newMetaphor":    {Type: genai.TypeString},
		},
		Required: []string{"vectors", "firstPrinciple", "oldPattern", "newMetaphor"},
	}
}
