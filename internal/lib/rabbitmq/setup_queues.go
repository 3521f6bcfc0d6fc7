package rabbitmq

// NotificationsExchange — direct-обменник для уведомлений клиентам.
const NotificationsExchange = "notifications"

// RoutingKeyCourseUnlocked — ключ сообщений об открытии курса.
const RoutingKeyCourseUnlocked = "course_unlocked"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые читает сервис рассылки.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.course_unlocked", RoutingKey: RoutingKeyCourseUnlocked},
	}
}
