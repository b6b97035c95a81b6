package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/ingest"
	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/query"
	"github.com/minuteshq/minutes/pkg/registry"
	"github.com/minuteshq/minutes/pkg/storage"
	"github.com/minuteshq/minutes/pkg/storage/inmemory"
	"github.com/minuteshq/minutes/pkg/transcript"
	testutils "github.com/minuteshq/minutes/pkg/utils/test"
	"github.com/minuteshq/minutes/pkg/vector"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

const apiPlanResponse = `[
  {
    "order": 1,
    "title": "Kickoff",
    "summary": "The meeting opens.",
    "topics": ["kickoff"],
    "projects": [{"alias": "Piggy Bank", "confidence": 0.9}],
    "start_anchor": "Alpha kickoff",
    "end_anchor": "the meeting.",
    "confidence": 0.8
  }
]`

const apiIntentResponse = `{"intent": "general_question", "confidence": 0.8}`

var _ = Describe("Handlers", func() {
	var (
		server    *Server
		store     *inmemory.Driver
		vectors   *testutils.MockVectorDriver
		answerGen *testutils.MockGenerator
		sessions  *intent.SessionStore
	)

	BeforeEach(func() {
		logger := zap.NewNop()
		store = inmemory.NewDriver(true)
		vectors = testutils.NewMockVectorDriver()
		publisher := testutils.NewMockPublisher()

		planGen := testutils.NewMockGenerator(apiPlanResponse)
		parseGen := testutils.NewMockGenerator(apiIntentResponse)
		answerGen = testutils.NewMockGenerator("The budget was approved.")

		projects := registry.NewRegistry(store, logger)
		planner := transcript.NewPlanner(planGen, store, logger)
		pipeline := ingest.NewPipeline(planner, store, projects, vectors, publisher, ingest.Config{}, logger)

		var err error
		sessions, err = intent.NewSessionStore(time.Minute)
		Expect(err).NotTo(HaveOccurred())

		parser := intent.NewParser(parseGen, logger)
		executor := query.NewExecutor(vectors, answerGen, query.ExecutorConfig{}, logger)
		queries := query.NewService(parser, sessions, executor, publisher, logger)

		server = NewServer(Config{ListenAddr: ":0"}, pipeline, queries, projects, store, vectors, sessions, logger)
	})

	AfterEach(func() {
		sessions.Close()
	})

	jsonRequest := func(method, target string, payload any) *http.Request {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		req, err := http.NewRequest(method, target, bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	decodeBody := func(resp *http.Response, out any) {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, out)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("responds with pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result string
			decodeBody(resp, &result)
			Expect(result).To(Equal("pong"))
		})
	})

	Describe("POST /v1/meetings", func() {
		ingestBody := func() IngestRequest {
			return IngestRequest{
				UserID:     1,
				ChatID:     10,
				MeetingID:  "mtg_1",
				Transcript: "Alpha kickoff begins now. We discuss budget today. We close the meeting.",
				Metadata:   map[string]string{"meeting_date": "2026-08-20", "title": "Weekly sync"},
			}
		}

		It("ingests a transcript and returns episode summaries", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/meetings", ingestBody()))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result IngestResponse
			decodeBody(resp, &result)
			Expect(result.MeetingID).To(Equal("mtg_1"))
			Expect(result.Indexed).To(BeTrue())
			Expect(result.Episodes).To(HaveLen(1))
			Expect(result.Episodes[0].EpisodeID).To(Equal("mtg_1:0"))
			Expect(result.Episodes[0].Topics).To(ContainElement("kickoff"))

			Expect(vectors.Upserted[1]).NotTo(BeEmpty())
		})

		It("rejects requests without a transcript", func() {
			body := ingestBody()
			body.Transcript = ""

			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/meetings", body))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /v1/meetings/:id", func() {
		It("returns a stored meeting", func() {
			rec := storage.MeetingRecord{MeetingID: "mtg_1", UserID: 1, Title: "Weekly sync"}
			Expect(store.RecordMeeting(context.Background(), rec)).To(Succeed())

			req, err := http.NewRequest(http.MethodGet, "/v1/meetings/mtg_1", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result storage.MeetingRecord
			decodeBody(resp, &result)
			Expect(result.Title).To(Equal("Weekly sync"))
		})

		It("returns 404 for unknown meetings", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/meetings/missing", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("POST /v1/query", func() {
		It("rejects requests without a user id", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/query", QueryRequest{Message: "what happened?"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("answers from indexed chunks", func() {
			vectors.Namespaces[1] = true
			vectors.Results = []vector.Result{
				{Text: "Budget approved for Q3.", Distance: 0.2, Metadata: map[string]string{vector.MetaMeetingDate: "2026-08-20"}},
			}

			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/query", QueryRequest{UserID: 1, Message: "what happened with the budget?"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result QueryResponse
			decodeBody(resp, &result)
			Expect(result.Answered).To(BeTrue())
			Expect(result.Answer).To(Equal("The budget was approved."))
		})

		It("substitutes a fallback message when nothing is indexed", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/query", QueryRequest{UserID: 1, Message: "what happened?"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result QueryResponse
			decodeBody(resp, &result)
			Expect(result.Answered).To(BeFalse())
			Expect(result.Answer).To(Equal(query.NoAnswerMessage("what happened?")))
			Expect(answerGen.Calls).To(BeZero())
		})
	})

	Describe("indexing settings", func() {
		It("stores and reports the setting", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPut, "/v1/settings/indexing", IndexingRequest{UserID: 1, ChatID: 10, Enabled: false}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			req, err := http.NewRequest(http.MethodGet, "/v1/settings/indexing?user_id=1&chat_id=10", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err = server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result map[string]bool
			decodeBody(resp, &result)
			Expect(result).To(HaveKeyWithValue("enabled", false))
		})

		It("requires a user id on reads", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/settings/indexing", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /v1/projects", func() {
		It("lists registry entries for a user", func() {
			Expect(store.UpsertProject(context.Background(), 1, "piggy_bank", 0.9)).To(Succeed())

			req, err := http.NewRequest(http.MethodGet, "/v1/projects?user_id=1", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result struct {
				Count    int                    `json:"count"`
				Projects []storage.ProjectEntry `json:"projects"`
			}
			decodeBody(resp, &result)
			Expect(result.Count).To(Equal(1))
			Expect(result.Projects[0].Alias).To(Equal("piggy_bank"))
		})
	})

	Describe("DELETE /v1/users/:id", func() {
		BeforeEach(func() {
			Expect(store.UpsertProject(context.Background(), 1, "piggy_bank", 0.9)).To(Succeed())
			Expect(store.RecordMeeting(context.Background(), storage.MeetingRecord{MeetingID: "mtg_1", UserID: 1, ChatID: 10})).To(Succeed())
			vectors.Namespaces[1] = true
		})

		It("purges all stored state and the vector namespace", func() {
			req, err := http.NewRequest(http.MethodDelete, "/v1/users/1", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			Expect(vectors.Namespaces).NotTo(HaveKey(int64(1)))

			_, err = store.GetMeeting(context.Background(), "mtg_1")
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("keeps the vector namespace when scoped to one chat", func() {
			req, err := http.NewRequest(http.MethodDelete, "/v1/users/1?chat_id=10", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			Expect(vectors.Namespaces).To(HaveKey(int64(1)))
		})

		It("rejects malformed user ids", func() {
			req, err := http.NewRequest(http.MethodDelete, "/v1/users/abc", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})
})
