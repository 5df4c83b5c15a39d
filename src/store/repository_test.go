package store

import (
	"context"
	"testing"

	"github.com/pipeos/pipes/src/utils/model"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMemoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepositories: func(s *RepositoryTestSuite) *Repositories {
			return NewMemoryRepositories()
		},
	})
}

// Behaviour shared by all repository implementations
type RepositoryTestSuite struct {
	suite.Suite
	ctx             context.Context
	newRepositories func(s *RepositoryTestSuite) *Repositories
	repositories    *Repositories
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) SetupTest() {
	s.repositories = s.newRepositories(s)
}

func (s *RepositoryTestSuite) container(name string, project string) *model.PipeContainer {
	out, err := s.repositories.Containers.Create(s.ctx, &model.PipeContainer{
		Name:      name,
		Project:   project,
		Uri:       "ipfs://" + name,
		Tags:      []string{"t1", "t2"},
		Container: model.NewJavaScriptPayload(&model.JavaScript{JsSource: name + "()"}),
	})
	require.Nil(s.T(), err)
	return out
}

func (s *RepositoryTestSuite) function(containerId string, position int, signature string) *model.PipeFunction {
	out, err := s.repositories.Functions.Create(s.ctx, &model.PipeFunction{
		ContainerId: containerId,
		Position:    position,
		Signature:   signature,
		AbiObj:      model.JSON(`{"name":"f"}`),
	})
	require.Nil(s.T(), err)
	return out
}

func (s *RepositoryTestSuite) TestCreateAndFindById() {
	created := s.container("Token", "p1")
	require.NotEmpty(s.T(), created.Id)
	require.False(s.T(), created.Timestamp.IsZero())

	found, err := s.repositories.Containers.FindById(s.ctx, created.Id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "Token", found.Name)
	require.Equal(s.T(), "p1", found.Project)
	require.Equal(s.T(), []string{"t1", "t2"}, []string(found.Tags))
	require.Equal(s.T(), model.PayloadKindJavaScript, found.Container.Kind)
	require.Equal(s.T(), "Token()", found.Container.JsSource())
	require.True(s.T(), created.Timestamp.Equal(found.Timestamp))
}

func (s *RepositoryTestSuite) TestIdIsGenerated() {
	created, err := s.repositories.Tags.Create(s.ctx, &model.Tag{Id: "mine", Name: "erc20"})
	require.Nil(s.T(), err)
	require.NotEqual(s.T(), "mine", created.Id)

	_, err = s.repositories.Tags.FindById(s.ctx, "mine")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestCreateValidates() {
	_, err := s.repositories.Containers.Create(s.ctx, &model.PipeContainer{Tags: []string{}})
	require.ErrorIs(s.T(), err, model.ErrValidation)

	count, err := s.repositories.Containers.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), count)
}

func (s *RepositoryTestSuite) TestNotFound() {
	_, err := s.repositories.Containers.FindById(s.ctx, "missing")
	require.ErrorIs(s.T(), err, ErrNotFound)

	err = s.repositories.Containers.UpdateById(s.ctx, "missing", map[string]any{"name": "x"})
	require.ErrorIs(s.T(), err, ErrNotFound)

	err = s.repositories.Containers.DeleteById(s.ctx, "missing")
	require.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestFindWhere() {
	s.container("A", "p1")
	s.container("B", "p2")
	s.container("C", "p1")

	found, err := s.repositories.Containers.Find(s.ctx, NewFilter().WithWhere("project", "p1"))
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 2)
	require.Equal(s.T(), "A", found[0].Name)
	require.Equal(s.T(), "C", found[1].Name)

	count, err := s.repositories.Containers.Count(s.ctx, NewFilter().WithWhere("project", "p2"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), count)
}

func (s *RepositoryTestSuite) TestFindLike() {
	s.container("token-a", "p1")
	s.container("token-b", "p1")
	s.container("nft", "p1")
	s.container("token%", "p1")

	found, err := s.repositories.Containers.Find(s.ctx, NewFilter().WithLike("name", "token%"))
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 3)

	found, err = s.repositories.Containers.Find(s.ctx, NewFilter().WithLike("name", EscapeLike("token%")))
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 1)
	require.Equal(s.T(), "token%", found[0].Name)

	found, err = s.repositories.Containers.Find(s.ctx, NewFilter().WithLike("name", "token-_"))
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 2)
}

func (s *RepositoryTestSuite) TestOrderAndPagination() {
	s.container("B", "p")
	s.container("C", "p")
	s.container("A", "p")

	found, err := s.repositories.Containers.Find(s.ctx, NewFilter().WithOrder("name", false))
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"A", "B", "C"}, names(found))

	found, err = s.repositories.Containers.Find(s.ctx, NewFilter().WithOrder("name", true).WithLimit(2))
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"C", "B"}, names(found))

	found, err = s.repositories.Containers.Find(s.ctx, NewFilter().WithOrder("name", false).WithOffset(1).WithLimit(1))
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"B"}, names(found))

	// Creation order by default
	found, err = s.repositories.Containers.Find(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"B", "C", "A"}, names(found))
}

func (s *RepositoryTestSuite) TestInvalidFilter() {
	_, err := s.repositories.Containers.Find(s.ctx, NewFilter().WithWhere("container", "x"))
	require.ErrorIs(s.T(), err, ErrInvalidFilter)

	_, err = s.repositories.Containers.Count(s.ctx, NewFilter().WithOrder("1; DROP TABLE tags", false))
	require.ErrorIs(s.T(), err, ErrInvalidFilter)

	_, err = s.repositories.Containers.Find(s.ctx, NewFilter().WithLimit(-1))
	require.ErrorIs(s.T(), err, ErrInvalidFilter)
}

func (s *RepositoryTestSuite) TestUpdateById() {
	created := s.container("Token", "p1")

	err := s.repositories.Containers.UpdateById(s.ctx, created.Id, map[string]any{
		"_id":     "other",
		"project": "p2",
	})
	require.Nil(s.T(), err)

	found, err := s.repositories.Containers.FindById(s.ctx, created.Id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "p2", found.Project)
	require.Equal(s.T(), "Token", found.Name)
	require.Equal(s.T(), "Token()", found.Container.JsSource())

	err = s.repositories.Containers.UpdateById(s.ctx, created.Id, map[string]any{"name": ""})
	require.ErrorIs(s.T(), err, model.ErrValidation)
}

func (s *RepositoryTestSuite) TestUpdateAll() {
	s.container("A", "p1")
	s.container("B", "p1")
	s.container("C", "p2")

	count, err := s.repositories.Containers.UpdateAll(s.ctx, map[string]any{"uri": "ipfs://moved"}, NewFilter().WithWhere("project", "p1"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), count)

	count, err = s.repositories.Containers.Count(s.ctx, NewFilter().WithWhere("uri", "ipfs://moved"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), count)
}

func (s *RepositoryTestSuite) TestDelete() {
	a := s.container("A", "p1")
	s.container("B", "p1")
	s.container("C", "p2")

	err := s.repositories.Containers.DeleteById(s.ctx, a.Id)
	require.Nil(s.T(), err)

	count, err := s.repositories.Containers.Delete(s.ctx, NewFilter().WithWhere("project", "p1"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), count)

	count, err = s.repositories.Containers.Delete(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), count)

	count, err = s.repositories.Containers.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), count)
}

func (s *RepositoryTestSuite) TestChildren() {
	s.function("a", 2, "c()")
	s.function("a", 0, "a()")
	other := s.function("b", 0, "x()")
	s.function("a", 1, "b()")

	children := s.repositories.Functions.Children("a")

	found, err := children.Find(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 3)
	for i, function := range found {
		require.Equal(s.T(), i, function.Position)
		require.Equal(s.T(), "a", function.ContainerId)
	}

	// Filters can't escape the container
	found, err = children.Find(s.ctx, NewFilter().WithLike("containerid", "%"))
	require.Nil(s.T(), err)
	require.Len(s.T(), found, 3)

	_, err = children.FindById(s.ctx, other.Id)
	require.ErrorIs(s.T(), err, ErrNotFound)

	err = children.DeleteById(s.ctx, other.Id)
	require.ErrorIs(s.T(), err, ErrNotFound)

	created, err := children.Create(s.ctx, &model.PipeFunction{ContainerId: "b", Position: 3})
	require.Nil(s.T(), err)
	require.Equal(s.T(), "a", created.ContainerId)

	err = children.UpdateById(s.ctx, created.Id, map[string]any{"containerid": "b", "signature": "d()"})
	require.Nil(s.T(), err)

	updated, err := s.repositories.Functions.FindById(s.ctx, created.Id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "a", updated.ContainerId)
	require.Equal(s.T(), "d()", updated.Signature)

	count, err := children.Delete(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(4), count)

	count, err = s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), count)
}

func (s *RepositoryTestSuite) TestFunctionDocs() {
	created, err := s.repositories.Functions.Create(s.ctx, &model.PipeFunction{
		ContainerId: "a",
		Signature:   "transfer(address,uint256)",
		AbiObj:      model.JSON(`{"name":"transfer"}`),
		Devdoc:      model.JSON(`{"details":"Transfers tokens"}`),
		ChainId:     "3",
	})
	require.Nil(s.T(), err)

	found, err := s.repositories.Functions.FindById(s.ctx, created.Id)
	require.Nil(s.T(), err)
	require.JSONEq(s.T(), `{"details":"Transfers tokens"}`, string(found.Devdoc))
	require.False(s.T(), found.Userdoc.IsPresent())
	require.JSONEq(s.T(), `{"name":"transfer"}`, string(found.AbiObj))
	require.Equal(s.T(), model.ChainId("3"), found.ChainId)

	found2, err := s.repositories.Functions.Find(s.ctx, NewFilter().WithWhere("signature", "transfer(address,uint256)"))
	require.Nil(s.T(), err)
	require.Len(s.T(), found2, 1)
}

func names(containers []*model.PipeContainer) []string {
	out := make([]string, len(containers))
	for i, container := range containers {
		out[i] = container.Name
	}
	return out
}
