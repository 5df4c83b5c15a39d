package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Api            *ApiReport            `json:"api,omitempty"`
	Ingester       *IngesterReport       `json:"ingester,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
	Sweeper        *SweeperReport        `json:"sweeper,omitempty"`
}
