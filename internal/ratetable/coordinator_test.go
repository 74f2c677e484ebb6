package ratetable_test

import (
	"testing"

	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CoordinatorTestSuite struct {
	suite.Suite
	renderer *recordingRenderer
	coord    *ratetable.Coordinator
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.renderer = &recordingRenderer{}
	s.coord = ratetable.NewCoordinator(
		ratetable.WithTableRenderer(s.renderer),
		ratetable.WithRecordKeys(sequentialKeys()),
	)
	s.coord.Daily().SetRecords([]ratetable.RateRecord{
		rec("USD", "INR", "83.12", "2024-05-01"),
		rec("USD", "EUR", "0.92", "2024-05-01"),
	})
}

func (s *CoordinatorTestSuite) TestStartsOnDaily() {
	s.Equal(ratetable.Daily, s.coord.Active())
}

func (s *CoordinatorTestSuite) TestFirstUserActivationNeedsFetch() {
	act, err := s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.True(act.Changed)
	s.True(act.NeedsFetch)
	s.Equal(ratetable.Daily, act.Previous)

	_, err = s.coord.Activate(ratetable.Daily)
	s.Require().NoError(err)

	act, err = s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.False(act.NeedsFetch, "second activation reuses loaded state")
}

func (s *CoordinatorTestSuite) TestMarkStaleRequestsFetch() {
	_, err := s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)

	s.Require().NoError(s.coord.MarkStale(ratetable.UserDefined))
	act, err := s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.False(act.Changed)
	s.True(act.NeedsFetch)
}

func (s *CoordinatorTestSuite) TestFailedTableRefetchesOnActivation() {
	act, err := s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.Require().True(act.NeedsFetch)
	token := s.coord.User().BeginFetch()
	s.Require().True(s.coord.User().FailFetch(token, "upstream down"))

	_, err = s.coord.Activate(ratetable.Daily)
	s.Require().NoError(err)
	act, err = s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.True(act.NeedsFetch, "failed table asks for another fetch")

	token = s.coord.User().BeginFetch()
	s.Require().True(s.coord.User().CompleteFetch(token, []ratetable.RateRecord{rec("USD", "SAR", "3.75", "")}))
	_, err = s.coord.Activate(ratetable.Daily)
	s.Require().NoError(err)
	act, err = s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.False(act.NeedsFetch)
}

func (s *CoordinatorTestSuite) TestSwitchingKeepsOtherTableState() {
	_, err := s.coord.Daily().OnAmountInput(0, "10")
	s.Require().NoError(err)
	s.coord.Daily().SetSearchQuery("INR")
	before := s.coord.Daily().View()

	_, err = s.coord.Activate(ratetable.UserDefined)
	s.Require().NoError(err)
	s.coord.User().SetRecords([]ratetable.RateRecord{rec("USD", "SAR", "3.75", "")})
	s.coord.User().SetSearchQuery("SAR")
	_, err = s.coord.User().OnAmountInput(0, "100")
	s.Require().NoError(err)

	_, err = s.coord.Activate(ratetable.Daily)
	s.Require().NoError(err)

	s.Equal(before, s.coord.Daily().View())
	s.Equal("INR", s.coord.Daily().Query())
	s.Equal("SAR", s.coord.User().Query(), "queries are scoped per table")
	s.Equal(2, s.coord.Daily().Len())
}

func (s *CoordinatorTestSuite) TestUserTableEmptyMessage() {
	s.coord.User().SetRecords(nil)
	v := s.coord.User().View()
	s.Equal(ratetable.MarkerNoData, v.Marker)
	s.Equal("No user-defined rates available", v.Message)
}

func (s *CoordinatorTestSuite) TestUnknownTable() {
	_, err := s.coord.Activate("weekly")
	s.ErrorIs(err, ratetable.ErrUnknownTable)
	s.Equal(ratetable.Daily, s.coord.Active())

	_, err = s.coord.Table("weekly")
	s.ErrorIs(err, ratetable.ErrUnknownTable)
	s.ErrorIs(s.coord.MarkStale("weekly"), ratetable.ErrUnknownTable)
}

func (s *CoordinatorTestSuite) TestViews() {
	views := s.coord.Views()
	s.Len(views, 2)
	s.Len(views[ratetable.Daily].Rows, 2)
	s.Equal(ratetable.MarkerNoData, views[ratetable.UserDefined].Marker)
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func TestCoordinator_TablesHaveIndependentRowStores(t *testing.T) {
	coord := ratetable.NewCoordinator(ratetable.WithRecordKeys(sequentialKeys()))
	records := []ratetable.RateRecord{rec("USD", "INR", "83.12", "d")}
	coord.Daily().SetRecords(records)
	coord.User().SetRecords(records)

	_, err := coord.Daily().OnAmountInput(0, "10")
	require.NoError(t, err)

	assert.Equal(t, "₹831.2000", coord.Daily().View().Rows[0].ConvertedDisplay)
	assert.Equal(t, "INR ₹", coord.User().View().Rows[0].ConvertedDisplay)
}
