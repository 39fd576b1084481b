package server

// Сервер объединяет специфичные HTTP сервера, отвечающие за обработку
// конкретных сущностей: прайсинг, кураторы, сделки.
type Server struct {
	RateServer
	CuratorServer
	DealServer
}

func NewServer(
	rateServer RateServer,
	curatorServer CuratorServer,
	dealServer DealServer,
) Server {
	return Server{
		RateServer:    rateServer,
		CuratorServer: curatorServer,
		DealServer:    dealServer,
	}
}
