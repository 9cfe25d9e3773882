// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/engboniface/stellar-core/core"
	"github.com/engboniface/stellar-core/logger"
	"github.com/engboniface/stellar-core/txpool"
	"github.com/gin-gonic/gin"
)

type nodeAPI struct {
	node *Node
}

func serveNodeAPI(node *Node) {
	api := &nodeAPI{node}

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ledger", api.getLedgerStatus)
	r.GET("/txpool/:account", api.getAccountTxQueueInfo)
	r.POST("/transactions", api.submitTX)

	go func() {
		err := r.Run(fmt.Sprintf(":%d", node.config.APIPort))
		if err != nil {
			logger.I().Fatalw("failed to start api", "error", err)
		}
	}()
}

type submitTxRequest struct {
	// Tx is a base64-encoded transaction previously produced by
	// core.Transaction.Marshal.
	Tx string `json:"tx" binding:"required"`
}

func (api *nodeAPI) getLedgerStatus(c *gin.Context) {
	h := api.node.storage.GetLastClosedLedgerHeader()
	c.JSON(http.StatusOK, gin.H{
		"ledgerSeq":    h.LedgerSeq,
		"closeTime":    h.CloseTime,
		"hash":         h.Hash.String(),
		"state":        api.node.storage.GetState(),
		"queueSizeOps": api.node.txpool.QueueSizeOps(),
	})
}

func (api *nodeAPI) getAccountTxQueueInfo(c *gin.Context) {
	raw, err := base64.StdEncoding.DecodeString(c.Param("account"))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse account")
		return
	}
	info := api.node.txpool.GetAccountTransactionQueueInfo(core.DecodeNodeID(raw))
	c.JSON(http.StatusOK, info)
}

func (api *nodeAPI) submitTX(c *gin.Context) {
	var req submitTxRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "cannot parse request")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Tx)
	if err != nil {
		c.String(http.StatusBadRequest, "cannot decode tx")
		return
	}
	tx, err := core.UnmarshalTransaction(raw)
	if err != nil {
		c.String(http.StatusBadRequest, "cannot unmarshal tx")
		return
	}

	result := api.node.txpool.TryAdd(tx)
	if result == txpool.Error {
		logger.I().Warnw("submit tx rejected", "hash", tx.FullHash().String())
		c.String(http.StatusBadRequest, "transaction rejected")
		return
	}
	if result == txpool.Pending {
		api.node.overlay.BroadcastTransaction(tx)
	}
	c.JSON(http.StatusOK, gin.H{
		"hash":   tx.FullHash().String(),
		"result": result.String(),
	})
}
