package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mifile/internal/cache"
	DB "mifile/internal/db"
	pkgerrors "mifile/pkg/errors"
)

// abortWithError answers with the status err maps to.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := pkgerrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.log.Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func collectionResponse(collection *DB.Collection) GetCollectionResponse {
	return GetCollectionResponse{
		Name:       collection.Name,
		Dimension:  collection.Dimension,
		SpaceType:  string(collection.SpaceType),
		Documents:  collection.Size(),
		IndexBuilt: collection.IndexBuilt(),
		Parameters: collection.Parameters,
	}
}

// Collection相关处理函数
func (s *Server) handleCreateCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		collection, err := s.db.CreateCollection(&DB.CreateCollectionOptions{
			Name:       req.Name,
			Dimension:  req.Dimension,
			SpaceType:  req.SpaceType,
			Parameters: req.Parameters,
		})
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, collectionResponse(collection))
	}
}

func (s *Server) handleGetCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		collection, err := s.db.GetCollection(c.Param("name"))
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, collectionResponse(collection))
	}
}

func (s *Server) handleDeleteCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.db.DeleteCollection(c.Param("name")); err != nil {
			s.abortWithError(c, err)
			return
		}
		// a recreated collection of the same size must not hit old entries
		s.cache.Purge()

		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handleListCollections() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := ListCollectionsResponse{Collections: []GetCollectionResponse{}}
		for _, collection := range s.db.ListCollections() {
			resp.Collections = append(resp.Collections, collectionResponse(collection))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) handleBuildIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := s.db.BuildIndex(c.Request.Context(), name); err != nil {
			s.metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
			s.abortWithError(c, err)
			return
		}
		s.metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
		s.cache.Purge()

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Document相关处理函数
func toDocument(req UpsertDocumentRequest) *DB.Document {
	return &DB.Document{
		ID:         req.ID,
		Vector:     req.Vector,
		Parameters: req.Parameters,
		Dimension:  len(req.Vector),
	}
}

func (s *Server) handleUpsertDocument() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		doc := toDocument(req)
		if err := s.db.UpsertDocument(c.Param("name"), doc); err != nil {
			s.abortWithError(c, err)
			return
		}
		s.metrics.DocsIndexedTotal.Inc()

		c.JSON(http.StatusOK, doc)
	}
}

func (s *Server) handleBatchUpsertDocuments() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchUpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		docs := make([]*DB.Document, len(req.Documents))
		for i, d := range req.Documents {
			docs[i] = toDocument(d)
		}
		if err := s.db.BatchUpsertDocuments(c.Request.Context(), c.Param("name"), docs); err != nil {
			s.abortWithError(c, err)
			return
		}
		s.metrics.DocsIndexedTotal.Add(float64(len(docs)))

		c.JSON(http.StatusOK, gin.H{"inserted": len(docs)})
	}
}

func (s *Server) handleGetDocument() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := s.db.GetDocument(c.Param("name"), c.Param("id"))
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, doc)
	}
}

func (s *Server) handleContainsVector() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContainsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ok, err := s.db.ContainsVector(c.Param("name"), req.Vector)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ContainsResponse{Contains: ok})
	}
}

func (s *Server) handleSearchVectors() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		var req SearchVectorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		collection, err := s.db.GetCollection(name)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		key := cache.SearchKey(name, collection.Size(), req.Limit, collection.IndexBuilt(), req.Vector)
		if resp, ok := s.cache.Get(key); ok {
			s.metrics.CacheHitsTotal.Inc()
			s.metrics.SearchQueriesTotal.WithLabelValues("cache").Inc()
			c.JSON(http.StatusOK, resp)
			return
		}
		s.metrics.CacheMissesTotal.Inc()

		// identical concurrent misses share one index query
		v, err, _ := s.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
			res, err := s.db.SearchVectors(name, req.Vector, req.Limit)
			if err != nil {
				return nil, err
			}
			s.metrics.observeQuery(res.Stats)

			resp := &SearchResponse{Results: make([]SearchResult, len(res.Documents)), Stats: res.Stats}
			for i, doc := range res.Documents {
				resp.Results[i] = SearchResult{ID: doc.ID, Distance: res.Distances[i], Parameters: doc.Parameters}
			}
			s.cache.Set(key, resp)
			return resp, nil
		})
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, v.(*SearchResponse))
	}
}
