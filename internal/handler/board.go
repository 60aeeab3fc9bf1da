package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/model"
	"github.com/iliyamo/arcade-reservation-board/internal/service"
)

// BoardHandler serves the public board: the catalog, the live grid and
// walk-up reservations.
type BoardHandler struct {
	Svc       *service.BoardService
	NameLimit int
	MaskNames bool
	Log       *zap.Logger
}

type catalogResponse struct {
	Programs  []string `json:"programs"`
	Merged    []string `json:"merged"`
	Times     []string `json:"times"`
	NameLimit int      `json:"name_limit"`
	MaxPeople int      `json:"max_people"`
}

// Catalog handles GET /v1/catalog.
func (h *BoardHandler) Catalog(c echo.Context) error {
	r := h.Svc.Resolver()
	return c.JSON(http.StatusOK, catalogResponse{
		Programs:  r.Catalog().Programs(),
		Merged:    r.Catalog().Merged(),
		Times:     r.Grid().Labels(),
		NameLimit: h.NameLimit,
		MaxPeople: service.MaxPeople,
	})
}

type cellView struct {
	Key           string `json:"key"`
	Row           int    `json:"row"`
	Col           int    `json:"col"`
	ID            uint64 `json:"id"`
	Program       string `json:"program"`
	Name          string `json:"name"`
	People        int    `json:"people"`
	EffectiveTime string `json:"effective_time"`
	Expired       bool   `json:"expired"`
}

type boardResponse struct {
	Clock            string     `json:"clock"`
	Cells            []cellView `json:"cells"`
	Expired          []string   `json:"expired"`
	DisabledPrograms []string   `json:"disabled_programs"`
	DisabledTimes    []string   `json:"disabled_times"`
}

// Board handles GET /v1/board.
func (h *BoardHandler) Board(c echo.Context) error {
	return c.JSON(http.StatusOK, buildBoardView(h.Svc, h.MaskNames))
}

func buildBoardView(svc *service.BoardService, mask bool) boardResponse {
	snap := svc.Snapshot()
	r := svc.Resolver()

	resp := boardResponse{
		Clock:            snap.Clock.Format("15:04:05"),
		Cells:            []cellView{},
		Expired:          []string{},
		DisabledPrograms: snap.DisabledPrograms(r.Catalog()),
		DisabledTimes:    snap.DisabledTimes(r.Grid()),
	}
	for row := 0; row < r.Grid().Len(); row++ {
		for col := 0; col < r.Catalog().Len(); col++ {
			if snap.Expired(row, col) {
				resp.Expired = append(resp.Expired, board.Key(row, col))
			}
			if r.BaseRow(row, col) != row {
				continue
			}
			res, ok := snap.ReservationAt(row, col)
			if !ok {
				continue
			}
			resp.Cells = append(resp.Cells, toCell(res, snap.Expired(row, col), mask))
		}
	}
	return resp
}

func toCell(res model.Reservation, expired, mask bool) cellView {
	name := res.Name
	if mask {
		name = board.MaskName(name)
	}
	return cellView{
		Key:           board.Key(res.Row, res.Col),
		Row:           res.Row,
		Col:           res.Col,
		ID:            res.ID,
		Program:       res.Program,
		Name:          name,
		People:        res.People,
		EffectiveTime: res.EffectiveTime,
		Expired:       expired,
	}
}

type proposeRequest struct {
	Name   string `json:"name"`
	People int    `json:"people"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

// Propose handles POST /v1/reservations.  Rejections answer 409 with a
// machine readable reason.
func (h *BoardHandler) Propose(c echo.Context) error {
	var req proposeRequest
	if err := c.Bind(&req); err != nil || req.Row == nil || req.Col == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Svc.Propose(c.Request().Context(), service.ProposeRequest{
		Name:   req.Name,
		People: req.People,
		Row:    *req.Row,
		Col:    *req.Col,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}
