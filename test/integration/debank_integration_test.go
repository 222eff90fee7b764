//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
	"github.com/fivetwenty-io/shadow-nav/pkg/debankclient"
)

// DeBankIntegrationTestSuite runs the client and CLI against the live API
type DeBankIntegrationTestSuite struct {
	suite.Suite
	config *TestConfig
	client debank.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// SetupSuite loads credentials and builds a client
func (suite *DeBankIntegrationTestSuite) SetupSuite() {
	if err := godotenv.Load("../../.env"); err != nil {
		os.Stderr.WriteString("Note: .env file not found at project root\n")
	}

	suite.config = LoadTestConfig()
	suite.config.SkipIfMissingConfig(suite.T())

	client, err := debankclient.NewFromEnv(&debank.Config{MaxAttempts: 2})
	suite.Require().NoError(err)

	suite.client = client
	suite.ctx, suite.cancel = context.WithTimeout(context.Background(), 2*time.Minute)
}

// TearDownSuite releases the suite context
func (suite *DeBankIntegrationTestSuite) TearDownSuite() {
	if suite.cancel != nil {
		suite.cancel()
	}
}

func (suite *DeBankIntegrationTestSuite) TestTotalBalance() {
	payload, err := suite.client.TotalBalance(suite.ctx, suite.config.Address)
	suite.Require().NoError(err)

	total, err := board.TotalUSD(payload)
	suite.Require().NoError(err)
	suite.GreaterOrEqual(total, 0.0)
}

func (suite *DeBankIntegrationTestSuite) TestUsedChains() {
	payload, err := suite.client.UsedChains(suite.ctx, suite.config.Address)
	suite.Require().NoError(err)

	_, err = payload.Array()
	suite.NoError(err)
}

func (suite *DeBankIntegrationTestSuite) TestSummarizeWallet() {
	summary, err := suite.client.SummarizeWallet(suite.ctx, suite.config.Address)
	suite.Require().NoError(err)
	suite.Equal(suite.config.Address, summary.Address)

	_, err = board.PositionRows(summary.Positions)
	suite.NoError(err)
}

func (suite *DeBankIntegrationTestSuite) TestInvalidKeyIsStatusError() {
	client, err := debankclient.NewWithEndpoint(suite.config.BaseURL, "invalid-key")
	suite.Require().NoError(err)

	_, err = client.TotalBalance(suite.ctx, suite.config.Address)
	suite.Require().Error(err)
	suite.NotZero(debank.StatusCode(err))
}

func (suite *DeBankIntegrationTestSuite) TestCLISummary() {
	suite.config.SkipIfMissingBinary(suite.T())

	runner := NewCommandRunner(suite.config, suite.T())

	stdout, stderr, err := runner.Run("summary", suite.config.Address, "--output", "json")
	suite.Require().NoError(err, stderr)

	var summaries []debank.WalletSummary
	suite.Require().NoError(json.Unmarshal([]byte(stdout), &summaries))
	suite.Len(summaries, 1)
}

func (suite *DeBankIntegrationTestSuite) TestCLIBoardSnapshot() {
	suite.config.SkipIfMissingBinary(suite.T())

	runner := NewCommandRunner(suite.config, suite.T())

	_, stderr, err := runner.RunWithInput("Test, Main, "+suite.config.Address+"\n", "board", "load")
	suite.Require().NoError(err, stderr)

	stdout, stderr, err := runner.Run("board", "snapshot", "--output", "json")
	suite.Require().NoError(err, stderr)

	var snapshot board.Snapshot
	suite.Require().NoError(json.Unmarshal([]byte(stdout), &snapshot))
	suite.Len(snapshot.Rows, 1)
	suite.Zero(snapshot.Failed)
}

func TestDeBankIntegrationSuite(t *testing.T) {
	suite.Run(t, new(DeBankIntegrationTestSuite))
}
