package openai

import (
	"context"
	"net/http"
	"strings"

	"ragdesk/internal/domain/query"
)

// defaultInstructions is the grounding prompt: answer in Traditional
// Chinese, only from retrieved passages, cite the supporting files, and
// say so explicitly when the documents don't cover the question.
const defaultInstructions = `你是一個企業對外的「專案 AI 助理」。

語言規則：
- 一律使用繁體中文回答。

資料規則：
- 只能依據 file_search 檢索到的文件內容回答。
- 不可以臆測、杜撰或補充文件沒有提到的資訊。
- 若文件中沒有相關資訊，請明確回答「文件未提供」，並說明需要哪類文件才能回答。

引用規則：
- 每個重點/結論都必須附「引用」：至少要能指出是哪些文件（檔名）支持該結論。
- 若無法找到對應依據，請不要產生結論。

建議回答格式：
1) 重點結論，150字內`

// AnswerService implements query.AnswerService over the responses API with
// a file_search tool bound to the project's vector store.
type AnswerService struct {
	c *Client
}

// NewAnswerService creates the answer service.
func NewAnswerService(c *Client) *AnswerService {
	return &AnswerService{c: c}
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type fileSearchTool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids"`
}

type responsesRequest struct {
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Input        []inputMessage   `json:"input"`
	Tools        []fileSearchTool `json:"tools"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Annotations []struct {
				Type   string `json:"type"`
				FileID string `json:"file_id"`
			} `json:"annotations"`
		} `json:"content"`
	} `json:"output"`
}

// Answer forwards the question and prior turns to the responses API and
// returns the answer text plus the file ids its citations point at.
func (s *AnswerService) Answer(ctx context.Context, remoteIndexID, question string, history []query.Turn) (string, []string, error) {
	input := make([]inputMessage, 0, 2*len(history)+1)
	for _, turn := range history {
		input = append(input,
			inputMessage{Role: "user", Content: turn.Question},
			inputMessage{Role: "assistant", Content: turn.Answer},
		)
	}
	input = append(input, inputMessage{Role: "user", Content: question})

	req := responsesRequest{
		Model:        s.c.model,
		Instructions: s.c.instructions,
		Input:        input,
		Tools: []fileSearchTool{{
			Type:           "file_search",
			VectorStoreIDs: []string{remoteIndexID},
		}},
	}

	var resp responsesResponse
	if err := s.c.doJSON(ctx, http.MethodPost, "/responses", req, &resp); err != nil {
		return "", nil, err
	}

	var parts []string
	var attributed []string
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}
		for _, content := range out.Content {
			if content.Type != "output_text" {
				continue
			}
			parts = append(parts, content.Text)
			for _, ann := range content.Annotations {
				if ann.Type == "file_citation" && ann.FileID != "" {
					attributed = append(attributed, ann.FileID)
				}
			}
		}
	}

	return strings.Join(parts, "\n"), attributed, nil
}
